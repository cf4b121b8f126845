package entities

const (
	// AddressLengthLimit bounds institution addresses and reported addresses
	AddressLengthLimit = 255
	// NoteLengthLimit bounds override notes and reported notes
	NoteLengthLimit = 255
)

// ReportInput is the payload of a user-submitted correction for one doctor.
// Websites and phones are comma-joined, mirroring the source export columns,
// and may be empty like on a Doctor. An empty availability is 0.
type ReportInput struct {
	FakeID       string `json:"fakeId,omitempty"`
	Address      string `json:"address" validate:"max=255"`
	Website      string `json:"website"`
	Phone        string `json:"phone"`
	Email        string `json:"email" validate:"omitempty,email"`
	OrderForm    string `json:"orderform"`
	Accepts      string `json:"accepts" validate:"required,oneof=y n"`
	Availability string `json:"availability" validate:"decimal"`
	Note         string `json:"note" validate:"max=255"`
}
