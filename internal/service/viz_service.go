package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/repository/contract"
	ws "browser-connector-be/internal/websocket"
	"browser-connector-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/datatypes"
)

// Pipeline phases streamed back to the extension while a saved recording is
// processed.
const (
	PhaseReceived   = "received"
	PhaseConverting = "converting"
	PhaseAnalyzing  = "analyzing"
	PhaseApplying   = "applying"
	PhaseCompleted  = "completed"
	PhaseFailed     = "failed"
)

// webm files open with the EBML magic.
var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

type IVizService interface {
	Consume(ctx context.Context) error
}

// vizService reacts to saved recordings: it verifies the artifact, records
// its fingerprint, and streams phase updates to every connected extension
// client along the way.
type vizService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	hub           *ws.Hub
	recordingRepo contract.RecordingRepository
	eventsPub     IEventPublisher
}

func NewVizService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *ws.Hub,
	recordingRepo contract.RecordingRepository,
	eventsPub IEventPublisher,
) IVizService {
	return &vizService{
		pubSub:        pubSub,
		topicName:     topicName,
		hub:           hub,
		recordingRepo: recordingRepo,
		eventsPub:     eventsPub,
	}
}

func (vs *vizService) Consume(ctx context.Context) error {
	messages, err := vs.pubSub.Subscribe(ctx, vs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			vs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (vs *vizService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RecordingSavedMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing saved recording: %s", payload.RecordingID)
	vs.broadcast(PhaseReceived, fmt.Sprintf("Recording %s received", payload.Filename))

	if err := vs.process(ctx, payload); err != nil {
		log.Printf("[ERROR] Pipeline failed for %s: %v", payload.RecordingID, err)
		vs.broadcast(PhaseFailed, err.Error())
		msg.Ack() // The artifact is broken; retrying won't fix it.
		return
	}

	vs.broadcast(PhaseCompleted, fmt.Sprintf("Recording %s processed", payload.Filename))
	log.Printf("[SUCCESS] Recording processed: %s", payload.RecordingID)
	msg.Ack()
}

func (vs *vizService) process(ctx context.Context, payload dto.RecordingSavedMessage) error {
	vs.broadcast(PhaseConverting, "Verifying artifact")
	raw, err := os.ReadFile(payload.Path)
	if err != nil {
		return fmt.Errorf("artifact unreadable: %w", err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("artifact %s is empty", payload.Filename)
	}

	vs.broadcast(PhaseAnalyzing, "Analyzing recording")
	if !bytes.HasPrefix(raw, ebmlMagic) {
		return fmt.Errorf("artifact %s is not a webm container", payload.Filename)
	}
	sum := sha256.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	vs.broadcast(PhaseApplying, "Indexing recording")
	recording, err := vs.recordingRepo.FindByRecordingID(ctx, payload.RecordingID)
	if err == nil {
		meta, _ := json.Marshal(map[string]interface{}{
			"sha256":     checksum,
			"size_bytes": len(raw),
		})
		recording.Metadata = datatypes.JSON(meta)
		if err := vs.recordingRepo.Update(ctx, recording); err != nil {
			return fmt.Errorf("failed to index recording: %w", err)
		}
	}

	if vs.eventsPub != nil {
		event := events.NewRecordingSaved(payload.RecordingID, payload.Filename, payload.DurationMs)
		if err := vs.eventsPub.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to mirror saved event to NATS: %v", err)
		}
	}

	return nil
}

func (vs *vizService) broadcast(phase, message string) {
	vs.hub.BroadcastStatus(ws.NewVizStatus(phase, message))
}
