package dto

// IdentityResponse answers the signature probe. The signature is what the
// extension matches before it sends anything else.
type IdentityResponse struct {
	Signature string `json:"signature"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}
