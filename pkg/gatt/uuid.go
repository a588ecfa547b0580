package gatt

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/go-ble/ble"
	"github.com/google/uuid"

	"github.com/meshgatt/meshgatt-go/pkg/bearer"
)

// toUUID converts a go-ble UUID (little-endian, 2, 4 or 16 bytes) to its
// canonical 128-bit form.
func toUUID(u ble.UUID) (uuid.UUID, error) {
	switch len(u) {
	case 2:
		return bearer.SIGUUID(binary.LittleEndian.Uint16(u)), nil
	case 4:
		v := bearer.SIGUUID(0)
		binary.BigEndian.PutUint32(v[0:4], binary.LittleEndian.Uint32(u))
		return v, nil
	case 16:
		b := slices.Clone([]byte(u))
		slices.Reverse(b)
		return uuid.FromBytes(b)
	default:
		return uuid.UUID{}, fmt.Errorf("invalid UUID length %d", len(u))
	}
}

// buildCatalog converts a discovered profile into a bearer catalog. Entries
// with malformed UUIDs are skipped.
func buildCatalog(p *ble.Profile) bearer.Catalog {
	cat := make(bearer.Catalog)
	if p == nil {
		return cat
	}
	for _, s := range p.Services {
		su, err := toUUID(s.UUID)
		if err != nil {
			continue
		}
		svc := make(bearer.Service, len(s.Characteristics))
		for _, c := range s.Characteristics {
			cu, err := toUUID(c.UUID)
			if err != nil {
				continue
			}
			svc[cu] = bearer.Characteristic{
				UUID:       cu,
				Properties: bearer.Property(c.Property),
				Ref:        c,
			}
		}
		cat[su] = svc
	}
	return cat
}
