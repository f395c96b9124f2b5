package models

// QRPayload is the data encoded in a business's check-in QR code.
type QRPayload struct {
	QRData       string `json:"qr_data"`
	BusinessName string `json:"business_name"`
}
