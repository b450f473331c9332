package pkg

import "fmt"

// LimitTypeEnum is the kind of play limit attached to a ticket. Both 0 and 3
// are seen in the wild for "no limit".
type LimitTypeEnum uint32

const (
	LimitTypeNone        LimitTypeEnum = 0x0
	LimitTypeTime        LimitTypeEnum = 0x1
	LimitTypeNoneAlt     LimitTypeEnum = 0x3
	LimitTypeLaunchCount LimitTypeEnum = 0x4
)

// CommonKeyIndexEnum selects which common key encrypted the title key.
type CommonKeyIndexEnum uint8

const (
	CommonKeyIndexCommon CommonKeyIndexEnum = 0x0
	CommonKeyIndexKorean CommonKeyIndexEnum = 0x1
	CommonKeyIndexVWii   CommonKeyIndexEnum = 0x2
)

func (k CommonKeyIndexEnum) String() string {
	switch k {
	case CommonKeyIndexCommon:
		return "Common"
	case CommonKeyIndexKorean:
		return "Korean"
	case CommonKeyIndexVWii:
		return "vWii"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}
