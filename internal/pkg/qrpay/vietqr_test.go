package qrpay

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC16_KnownVector(t *testing.T) {
	assert.Equal(t, uint16(0x29B1), CRC16("123456789"))
}

func TestPayload(t *testing.T) {
	acc := Account{BankBIN: "970436", AccountNumber: "0011001234567"}
	payload, err := Payload(acc, Transfer{
		Amount:  decimal.NewFromInt(5000000),
		Content: "STAY-20250101-AB12CD",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "000201010212"))
	assert.Contains(t, payload, "0010A000000727")
	assert.Contains(t, payload, "0006970436")
	assert.Contains(t, payload, "01130011001234567")
	assert.Contains(t, payload, "5303704")
	assert.Contains(t, payload, "54075000000")
	assert.Contains(t, payload, "5802VN")
	assert.Contains(t, payload, "0820STAY-20250101-AB12CD")

	body, crc := payload[:len(payload)-4], payload[len(payload)-4:]
	assert.True(t, strings.HasSuffix(body, "6304"))
	assert.Equal(t, fmt.Sprintf("%04X", CRC16(body)), crc)
}

func TestPayload_RequiresAccount(t *testing.T) {
	_, err := Payload(Account{}, Transfer{})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestPNG(t *testing.T) {
	png, err := PNG("000201", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	uri, err := DataURI("000201", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
