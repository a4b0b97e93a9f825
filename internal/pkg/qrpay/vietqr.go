// Package qrpay builds VietQR bank-transfer payloads (EMVCo merchant-presented
// format, as used by NAPAS 247) and renders them as PNG images.
package qrpay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	napasGUID       = "A000000727"
	serviceTransfer = "QRIBFTTA"
	currencyVND     = "704"
	countryVN       = "VN"
)

// Account is the beneficiary bank account
type Account struct {
	BankBIN       string
	AccountNumber string
	AccountName   string
}

// Transfer is one requested payment
type Transfer struct {
	Amount  decimal.Decimal
	Content string
}

var ErrInvalidAccount = errors.New("qrpay: bank BIN and account number are required")

// Payload returns the EMVCo string for a dynamic transfer QR
func Payload(acc Account, t Transfer) (string, error) {
	if acc.BankBIN == "" || acc.AccountNumber == "" {
		return "", ErrInvalidAccount
	}

	beneficiary := tlv("00", acc.BankBIN) + tlv("01", acc.AccountNumber)
	merchant := tlv("00", napasGUID) + tlv("01", beneficiary) + tlv("02", serviceTransfer)

	var b strings.Builder
	b.WriteString(tlv("00", "01"))
	b.WriteString(tlv("01", "12"))
	b.WriteString(tlv("38", merchant))
	b.WriteString(tlv("53", currencyVND))
	if t.Amount.IsPositive() {
		b.WriteString(tlv("54", t.Amount.Round(0).String()))
	}
	b.WriteString(tlv("58", countryVN))
	if t.Content != "" {
		b.WriteString(tlv("62", tlv("08", sanitize(t.Content))))
	}
	b.WriteString("6304")

	return b.String() + fmt.Sprintf("%04X", CRC16(b.String())), nil
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// Banking apps reject non-ASCII transfer content
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 && r != '|' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 50 {
		out = out[:50]
	}
	return out
}

// CRC16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF)
func CRC16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
