package pkg

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWAD(cert, tik, tmd, content []byte) []byte {
	hdr := make([]byte, 0x40)
	copy(hdr, []byte{0x00, 0x00, 0x00, 0x20, 'I', 's', 0x00, 0x00})
	binary.BigEndian.PutUint32(hdr[0x08:], uint32(len(cert)))
	binary.BigEndian.PutUint32(hdr[0x0C:], 0) // crl
	binary.BigEndian.PutUint32(hdr[0x10:], uint32(len(tik)))
	binary.BigEndian.PutUint32(hdr[0x14:], uint32(len(tmd)))
	binary.BigEndian.PutUint32(hdr[0x18:], uint32(len(content)))
	binary.BigEndian.PutUint32(hdr[0x1C:], 0) // meta

	data := append([]byte(nil), hdr...)
	data = append(data, Pad(cert, 0x40)...)
	data = append(data, Pad(tik, 0x40)...)
	data = append(data, Pad(tmd, 0x40)...)
	data = append(data, Pad(content, 0x40)...)
	return data
}

func TestParseWAD(t *testing.T) {
	cert := bytes.Repeat([]byte{0xCE}, 0x30)
	tik := buildTicket()
	tmd := bytes.Repeat([]byte{0x7D}, 0x10)
	content := bytes.Repeat([]byte{0xC0}, 0x20)

	w, err := ParseWAD(buildWAD(cert, tik, tmd, content))
	require.NoError(t, err)

	assert.Equal(t, "Is", w.Type)
	assert.Equal(t, uint16(0), w.Version)

	offset, size := w.GetCertRegion()
	assert.Equal(t, [2]uint32{0x40, 0x30}, [2]uint32{offset, size})
	offset, size = w.GetCrlRegion()
	assert.Equal(t, [2]uint32{0x80, 0x00}, [2]uint32{offset, size})
	offset, size = w.GetTicketRegion()
	assert.Equal(t, [2]uint32{0x80, TicketSize}, [2]uint32{offset, size})
	offset, size = w.GetTMDRegion()
	assert.Equal(t, [2]uint32{0x340, 0x10}, [2]uint32{offset, size})
	offset, size = w.GetMetaRegion()
	assert.Equal(t, [2]uint32{0x380, 0x00}, [2]uint32{offset, size})
	offset, size = w.GetContentRegion()
	assert.Equal(t, [2]uint32{0x380, 0x20}, [2]uint32{offset, size})

	got, err := w.GetCertData()
	require.NoError(t, err)
	assert.Equal(t, cert, got)
	got, err = w.GetTicketData()
	require.NoError(t, err)
	assert.Equal(t, tik, got)
	got, err = w.GetTMDData()
	require.NoError(t, err)
	assert.Equal(t, tmd, got)
	got, err = w.GetContentData()
	require.NoError(t, err)
	assert.Equal(t, content, got)

	ticket, err := w.GetTicket()
	require.NoError(t, err)
	assert.Equal(t, "0001000148414341", ticket.GetTitleID())
}

func TestParseWADRejects(t *testing.T) {
	valid := buildWAD(nil, buildTicket(), nil, nil)

	_, err := ParseWAD(valid[:0x20])
	assert.ErrorIs(t, err, ErrInvalidWAD)

	badLeadIn := append([]byte(nil), valid...)
	badLeadIn[3] = 0x21
	_, err = ParseWAD(badLeadIn)
	assert.ErrorIs(t, err, ErrInvalidWAD)

	boot2 := append([]byte(nil), valid...)
	copy(boot2[0x04:], "ib")
	_, err = ParseWAD(boot2)
	assert.ErrorIs(t, err, ErrInvalidWAD)

	badVersion := append([]byte(nil), valid...)
	badVersion[0x07] = 0x01
	_, err = ParseWAD(badVersion)
	assert.ErrorIs(t, err, ErrInvalidWAD)
}

func TestParseWADTruncatedRegion(t *testing.T) {
	data := buildWAD(nil, buildTicket(), nil, bytes.Repeat([]byte{0xC0}, 0x20))

	w, err := ParseWAD(data[:len(data)-0x40])
	require.NoError(t, err)

	// the ticket region is still intact
	_, err = w.GetTicketData()
	assert.NoError(t, err)

	// the content region now runs past the end and is rejected
	_, err = w.GetContentData()
	assert.ErrorIs(t, err, ErrInvalidWAD)
}

func TestWADDumpRoundTrip(t *testing.T) {
	cert := bytes.Repeat([]byte{0xCE}, 0x30)
	tik := buildTicket()
	tmd := bytes.Repeat([]byte{0x7D}, 0x10)
	content := bytes.Repeat([]byte{0xC0}, 0x20)
	data := buildWAD(cert, tik, tmd, content)

	w, err := ParseWAD(data)
	require.NoError(t, err)

	dumped, err := w.Dump()
	require.NoError(t, err)
	assert.Equal(t, data, dumped)

	again, err := ParseWAD(dumped)
	require.NoError(t, err)
	got, err := again.GetTicketData()
	require.NoError(t, err)
	assert.Equal(t, tik, got)
}
