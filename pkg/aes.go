package pkg

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// titleKeyIV builds the CBC IV for title key operations: the 8 byte title ID
// followed by 8 zero bytes.
func titleKeyIV(titleID []byte) ([]byte, error) {
	if len(titleID) != 8 {
		return nil, fmt.Errorf("%w: title ID must be 8 bytes, got %d", ErrKeyDerivation, len(titleID))
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, titleID)
	return iv, nil
}

// DecryptTitleKey recovers the cleartext title key from its encrypted form.
// The key index selects the common key from the table and the title ID is
// used as the IV. An index outside the known set fails with
// ErrUnknownKeyIndex; it is never substituted with a default.
func DecryptTitleKey(titleKeyEnc []byte, index CommonKeyIndexEnum, titleID []byte, keys CommonKeyTable) ([]byte, error) {
	block, iv, err := titleKeyCipher(titleKeyEnc, index, titleID, keys)
	if err != nil {
		return nil, err
	}

	titleKey := make([]byte, aes.BlockSize)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(titleKey, titleKeyEnc)
	return titleKey, nil
}

// EncryptTitleKey is the inverse of DecryptTitleKey, with the same key and IV
// selection rules.
func EncryptTitleKey(titleKeyDec []byte, index CommonKeyIndexEnum, titleID []byte, keys CommonKeyTable) ([]byte, error) {
	block, iv, err := titleKeyCipher(titleKeyDec, index, titleID, keys)
	if err != nil {
		return nil, err
	}

	titleKeyEnc := make([]byte, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(titleKeyEnc, titleKeyDec)
	return titleKeyEnc, nil
}

func titleKeyCipher(titleKey []byte, index CommonKeyIndexEnum, titleID []byte, keys CommonKeyTable) (cipher.Block, []byte, error) {
	commonKey, err := keys.Lookup(index)
	if err != nil {
		return nil, nil, err
	}

	if len(titleKey) != aes.BlockSize {
		return nil, nil, fmt.Errorf("%w: title key must be %d bytes, got %d", ErrKeyDerivation, aes.BlockSize, len(titleKey))
	}

	iv, err := titleKeyIV(titleID)
	if err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(commonKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	return block, iv, nil
}

// contentIV builds the CBC IV for content operations: the big-endian content
// index zero extended to a block.
func contentIV(contentIndex uint16) []byte {
	iv := make([]byte, aes.BlockSize)
	binary.BigEndian.PutUint16(iv, contentIndex)
	return iv
}

// DecryptContent decrypts a content blob with a decrypted title key. The
// content index from the TMD record is the IV and contentLength trims the
// block padding off the result.
func DecryptContent(contentEnc, titleKey []byte, contentIndex uint16, contentLength int) ([]byte, error) {
	block, err := contentCipher(titleKey)
	if err != nil {
		return nil, err
	}

	padded := padBlock(contentEnc)
	contentDec := make([]byte, len(padded))
	cipher.NewCBCDecrypter(block, contentIV(contentIndex)).CryptBlocks(contentDec, padded)

	if contentLength < 0 || contentLength > len(contentDec) {
		return nil, fmt.Errorf("content length %d out of range for %d decrypted bytes", contentLength, len(contentDec))
	}
	return contentDec[:contentLength], nil
}

// EncryptContent encrypts a content blob with a decrypted title key, padding
// it to the block size first.
func EncryptContent(contentDec, titleKey []byte, contentIndex uint16) ([]byte, error) {
	block, err := contentCipher(titleKey)
	if err != nil {
		return nil, err
	}

	padded := padBlock(contentDec)
	contentEnc := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, contentIV(contentIndex)).CryptBlocks(contentEnc, padded)
	return contentEnc, nil
}

func contentCipher(titleKey []byte) (cipher.Block, error) {
	block, err := aes.NewCipher(titleKey)
	if err != nil {
		return nil, fmt.Errorf("bad title key: %v", err)
	}
	return block, nil
}

// padBlock zero extends data to a multiple of the AES block size, copying so
// the caller's buffer is left alone.
func padBlock(data []byte) []byte {
	size := len(data)
	if rem := size % aes.BlockSize; rem != 0 {
		size += aes.BlockSize - rem
	}
	padded := make([]byte, size)
	copy(padded, data)
	return padded
}
