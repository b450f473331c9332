package pkg

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const wadHeaderSize uint32 = 0x40

// wadAlignment is the boundary every WAD region is placed on.
const wadAlignment uint32 = 0x40

var wadLeadIn = [4]byte{0x00, 0x00, 0x00, 0x20}

// wadTypeInstallable marks a regular installable WAD. boot2 WADs use "ib"
// and have a different layout.
const wadTypeInstallable = "Is"

// WAD wraps a raw WAD buffer with the region sizes from its header and the
// region offsets derived from them. The region data stays in the buffer and
// is sliced out on demand.
type WAD struct {
	data []byte

	Type    string
	Version uint16

	CertSize    uint32
	CrlSize     uint32
	TikSize     uint32
	TMDSize     uint32
	ContentSize uint32
	MetaSize    uint32

	CertOffset    uint32
	CrlOffset     uint32
	TikOffset     uint32
	TMDOffset     uint32
	ContentOffset uint32
	MetaOffset    uint32
}

// ParseWAD reads the WAD header and computes the region offsets. Regions are
// bounds checked lazily by the accessors, so a truncated buffer still parses
// as long as the header is intact.
func ParseWAD(data []byte) (*WAD, error) {
	if uint32(len(data)) < wadHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrInvalidWAD, len(data), wadHeaderSize)
	}

	if !bytes.Equal(data[0x00:0x04], wadLeadIn[:]) {
		return nil, fmt.Errorf("%w: bad header lead-in", ErrInvalidWAD)
	}

	w := &WAD{data: data}
	w.Type = string(data[0x04:0x06])
	w.Version = binary.BigEndian.Uint16(data[0x06:0x08])

	if w.Type != wadTypeInstallable {
		return nil, fmt.Errorf("%w: type %q is not supported (boot2?)", ErrInvalidWAD, w.Type)
	}
	if w.Version != 0 {
		return nil, fmt.Errorf("%w: version %d is not supported", ErrInvalidWAD, w.Version)
	}

	w.CertSize = binary.BigEndian.Uint32(data[0x08:])
	w.CrlSize = binary.BigEndian.Uint32(data[0x0C:])
	w.TikSize = binary.BigEndian.Uint32(data[0x10:])
	w.TMDSize = binary.BigEndian.Uint32(data[0x14:])
	w.ContentSize = binary.BigEndian.Uint32(data[0x18:])
	w.MetaSize = binary.BigEndian.Uint32(data[0x1C:])

	// Offsets are not stored; every region starts at the aligned end of the
	// previous one. The crl region is unused in practice but still occupies
	// a slot in the layout.
	w.CertOffset = wadHeaderSize
	w.CrlOffset = Align(w.CertOffset+w.CertSize, wadAlignment)
	w.TikOffset = Align(w.CrlOffset+w.CrlSize, wadAlignment)
	w.TMDOffset = Align(w.TikOffset+w.TikSize, wadAlignment)
	w.MetaOffset = Align(w.TMDOffset+w.TMDSize, wadAlignment)
	w.ContentOffset = Align(w.MetaOffset+w.MetaSize, wadAlignment)

	return w, nil
}

func (w *WAD) section(offset, size uint32) ([]byte, error) {
	end := uint64(offset) + uint64(size)
	if end > uint64(len(w.data)) {
		return nil, fmt.Errorf("%w: region at 0x%x+0x%x runs past the %d byte buffer", ErrInvalidWAD, offset, size, len(w.data))
	}
	return w.data[offset:end:end], nil
}

// GetCertRegion returns the offset and size of the certificate chain.
func (w *WAD) GetCertRegion() (uint32, uint32) {
	return w.CertOffset, w.CertSize
}

// GetCrlRegion returns the offset and size of the (normally empty) crl.
func (w *WAD) GetCrlRegion() (uint32, uint32) {
	return w.CrlOffset, w.CrlSize
}

// GetTicketRegion returns the offset and size of the ticket.
func (w *WAD) GetTicketRegion() (uint32, uint32) {
	return w.TikOffset, w.TikSize
}

// GetTMDRegion returns the offset and size of the TMD.
func (w *WAD) GetTMDRegion() (uint32, uint32) {
	return w.TMDOffset, w.TMDSize
}

// GetContentRegion returns the offset and size of the encrypted contents.
func (w *WAD) GetContentRegion() (uint32, uint32) {
	return w.ContentOffset, w.ContentSize
}

// GetMetaRegion returns the offset and size of the meta/footer region.
func (w *WAD) GetMetaRegion() (uint32, uint32) {
	return w.MetaOffset, w.MetaSize
}

func (w *WAD) GetCertData() ([]byte, error) {
	return w.section(w.CertOffset, w.CertSize)
}

func (w *WAD) GetCrlData() ([]byte, error) {
	return w.section(w.CrlOffset, w.CrlSize)
}

func (w *WAD) GetTicketData() ([]byte, error) {
	return w.section(w.TikOffset, w.TikSize)
}

func (w *WAD) GetTMDData() ([]byte, error) {
	return w.section(w.TMDOffset, w.TMDSize)
}

func (w *WAD) GetContentData() ([]byte, error) {
	return w.section(w.ContentOffset, w.ContentSize)
}

func (w *WAD) GetMetaData() ([]byte, error) {
	return w.section(w.MetaOffset, w.MetaSize)
}

// GetTicket decodes the embedded ticket.
func (w *WAD) GetTicket() (*Ticket, error) {
	data, err := w.GetTicketData()
	if err != nil {
		return nil, err
	}
	return ParseTicket(data)
}

// Dump serializes the WAD back into bytes, padding the header and every
// region out to the 0x40 boundary. Parsing the result yields the same
// regions.
func (w *WAD) Dump() ([]byte, error) {
	hdr := &bytes.Buffer{}
	hdr.Write(wadLeadIn[:])
	hdr.WriteString(w.Type)
	for _, v := range []interface{}{
		w.Version,
		w.CertSize,
		w.CrlSize,
		w.TikSize,
		w.TMDSize,
		w.ContentSize,
		w.MetaSize,
	} {
		if err := binary.Write(hdr, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}

	out := &bytes.Buffer{}
	out.Write(Pad(hdr.Bytes(), wadAlignment))

	sections := []func() ([]byte, error){
		w.GetCertData,
		w.GetCrlData,
		w.GetTicketData,
		w.GetTMDData,
		w.GetMetaData,
		w.GetContentData,
	}

	for _, get := range sections {
		data, err := get()
		if err != nil {
			return nil, err
		}
		out.Write(Pad(data, wadAlignment))
	}

	return out.Bytes(), nil
}
