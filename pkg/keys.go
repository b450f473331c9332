package pkg

import (
	"crypto/aes"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CommonKeyTable maps a common key index to its 16 byte master key. The keys
// are caller-provided configuration; this package never embeds key material.
type CommonKeyTable map[CommonKeyIndexEnum][]byte

// Lookup returns the common key for an index. An index outside {0,1,2} is
// ErrUnknownKeyIndex; a known index missing from the table, or an entry of
// the wrong length, is ErrKeyDerivation.
func (t CommonKeyTable) Lookup(index CommonKeyIndexEnum) ([]byte, error) {
	switch index {
	case CommonKeyIndexCommon, CommonKeyIndexKorean, CommonKeyIndexVWii:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKeyIndex, uint8(index))
	}

	key, ok := t[index]
	if !ok {
		return nil, fmt.Errorf("%w: no %s key in table", ErrKeyDerivation, index)
	}
	if len(key) != aes.BlockSize {
		return nil, fmt.Errorf("%w: %s key must be %d bytes, got %d", ErrKeyDerivation, index, aes.BlockSize, len(key))
	}
	return key, nil
}

type keyFile struct {
	Common string `yaml:"common"`
	Korean string `yaml:"korean"`
	VWii   string `yaml:"vwii"`
}

// LoadKeyTable reads a YAML key file with hex encoded common/korean/vwii
// entries. Missing entries are left out of the table; resolving a ticket
// against them fails later with ErrKeyDerivation.
func LoadKeyTable(name string) (CommonKeyTable, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var kf keyFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("key file %s: %v", name, err)
	}

	table := CommonKeyTable{}
	entries := []struct {
		index CommonKeyIndexEnum
		value string
	}{
		{CommonKeyIndexCommon, kf.Common},
		{CommonKeyIndexKorean, kf.Korean},
		{CommonKeyIndexVWii, kf.VWii},
	}

	for _, e := range entries {
		if e.value == "" {
			continue
		}
		key, err := hex.DecodeString(e.value)
		if err != nil {
			return nil, fmt.Errorf("key file %s: %s key: %v", name, e.index, err)
		}
		if len(key) != aes.BlockSize {
			return nil, fmt.Errorf("key file %s: %s key must be %d bytes, got %d", name, e.index, aes.BlockSize, len(key))
		}
		table[e.index] = key
	}

	return table, nil
}
