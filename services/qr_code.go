package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

type IQRService interface {
	Encode(content string) ([]byte, error)
}

type QRService struct{}

func NewQRService() IQRService {
	return &QRService{}
}

// Encode renders content as a PNG QR code.
func (q *QRService) Encode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
