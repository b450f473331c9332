package pkg

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// Field offsets of a v0 ticket. There are no length prefixes anywhere in the
// format; every field sits at a fixed position in the buffer.
const (
	offSignatureType     = 0x000 // 4 bytes, always 0x00010001 (RSA-2048)
	offSignature         = 0x004 // 256 bytes
	offIssuer            = 0x140 // 64 bytes, NUL padded
	offECDHData          = 0x180 // 60 bytes, console-specific key exchange
	offFormatVersion     = 0x1BC // 1 byte
	offTitleKeyEnc       = 0x1BF // 16 bytes
	offTicketID          = 0x1D0 // 8 bytes
	offConsoleID         = 0x1D8 // uint32
	offTitleID           = 0x1DC // 8 bytes, doubles as the title key IV
	offTitleVersionHigh  = 0x1E6 // 1 byte
	offTitleVersionLow   = 0x1E7 // 1 byte
	offPermittedTitles   = 0x1E8 // 4 bytes
	offPermitMask        = 0x1EC // 4 bytes
	offExportAllowed     = 0x1F0 // 1 byte
	offCommonKeyIndex    = 0x1F1 // 1 byte
	offContentAccessPerm = 0x222 // 64 bytes, one bit per content
	offTitleLimits       = 0x264 // 8 entries of (uint32 type, uint32 maximum)

	titleLimitCount = 8

	// TicketSize is the offset span through the last play limit entry. A
	// buffer must hold at least this much to decode.
	TicketSize = offTitleLimits + titleLimitCount*8 // 0x2A4
)

// TitleLimit is a single play limit slot. MaximumUsage is minutes for a time
// limit, or the number of launches for a launch limit.
type TitleLimit struct {
	Type         LimitTypeEnum
	MaximumUsage uint32
}

// Ticket holds the decoded fields of a v0 ticket. It is built once by
// ParseTicket and never mutated; the signature, ECDH data and masks are kept
// verbatim for passthrough to whatever verifies or rewraps the ticket.
type Ticket struct {
	SignatureType [4]byte
	Signature     [256]byte
	// Issuer is the raw 64 byte decode, NUL padding included. Callers that
	// want the readable name trim the padding themselves.
	Issuer              string
	ECDHData            [60]byte
	FormatVersion       uint8
	TitleKeyEnc         [16]byte
	TicketID            [8]byte
	ConsoleID           uint32
	TitleID             [8]byte
	TitleVersion        uint16
	PermittedTitlesMask [4]byte
	PermitMask          [4]byte
	ExportAllowed       uint8
	CommonKeyIndex      uint8
	ContentAccessPerm   [64]byte
	TitleLimits         [titleLimitCount]TitleLimit
}

// ParseTicket decodes a raw ticket buffer. Decoding either fully succeeds or
// fails with ErrMalformedTicket; no partially populated ticket is returned.
// The same buffer always decodes to the same ticket.
func ParseTicket(data []byte) (*Ticket, error) {
	if len(data) < TicketSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformedTicket, len(data), TicketSize)
	}

	issuer := data[offIssuer : offIssuer+64]
	if !utf8.Valid(issuer) {
		return nil, fmt.Errorf("%w: issuer is not valid text", ErrMalformedTicket)
	}

	t := new(Ticket)
	copy(t.SignatureType[:], data[offSignatureType:])
	copy(t.Signature[:], data[offSignature:])
	t.Issuer = string(issuer)
	copy(t.ECDHData[:], data[offECDHData:])
	t.FormatVersion = data[offFormatVersion]
	copy(t.TitleKeyEnc[:], data[offTitleKeyEnc:])
	copy(t.TicketID[:], data[offTicketID:])
	t.ConsoleID = binary.BigEndian.Uint32(data[offConsoleID:])
	copy(t.TitleID[:], data[offTitleID:])
	// The title version is stored as two separate byte reads, not a single
	// 16-bit field. Keep the arithmetic combine from the format reference.
	t.TitleVersion = uint16(data[offTitleVersionHigh])*256 + uint16(data[offTitleVersionLow])
	copy(t.PermittedTitlesMask[:], data[offPermittedTitles:])
	copy(t.PermitMask[:], data[offPermitMask:])
	t.ExportAllowed = data[offExportAllowed]
	t.CommonKeyIndex = data[offCommonKeyIndex]
	copy(t.ContentAccessPerm[:], data[offContentAccessPerm:])

	for i := 0; i < titleLimitCount; i++ {
		off := offTitleLimits + i*8
		t.TitleLimits[i] = TitleLimit{
			Type:         LimitTypeEnum(binary.BigEndian.Uint32(data[off:])),
			MaximumUsage: binary.BigEndian.Uint32(data[off+4:]),
		}
	}

	return t, nil
}

// GetSignature returns the signature over the ticket body.
func (t *Ticket) GetSignature() []byte {
	return t.Signature[:]
}

// GetIssuer returns the raw issuer string, NUL padding included.
func (t *Ticket) GetIssuer() string {
	return t.Issuer
}

// GetTitleID returns the title ID as a hex string.
func (t *Ticket) GetTitleID() string {
	return hex.EncodeToString(t.TitleID[:])
}

// GetTicketID returns the ticket ID as a hex string.
func (t *Ticket) GetTicketID() string {
	return hex.EncodeToString(t.TicketID[:])
}

func (t *Ticket) GetTitleVersion() uint16 {
	return t.TitleVersion
}

func (t *Ticket) GetConsoleID() uint32 {
	return t.ConsoleID
}

// GetTitleKeyEnc returns the title key as stored, still encrypted under the
// selected common key.
func (t *Ticket) GetTitleKeyEnc() []byte {
	return t.TitleKeyEnc[:]
}

// GetCommonKeyIndex returns the stored key index. The raw byte is preserved
// even when it is outside the known set; resolution rejects it then.
func (t *Ticket) GetCommonKeyIndex() CommonKeyIndexEnum {
	return CommonKeyIndexEnum(t.CommonKeyIndex)
}

// GetCommonKeyType returns the name of the common key used for the title key.
func (t *Ticket) GetCommonKeyType() string {
	return t.GetCommonKeyIndex().String()
}

// GetTitleLimits returns the eight play limit slots in stored order.
func (t *Ticket) GetTitleLimits() []TitleLimit {
	return t.TitleLimits[:]
}

// GetTitleKey decrypts the title key using the matching common key from the
// table. The ticket itself is not modified.
func (t *Ticket) GetTitleKey(keys CommonKeyTable) ([]byte, error) {
	return DecryptTitleKey(t.TitleKeyEnc[:], t.GetCommonKeyIndex(), t.TitleID[:], keys)
}
