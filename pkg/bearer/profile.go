package bearer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Profile identifies the GATT service topology a peer exposes.
type Profile uint8

const (
	// ProfileNone means no profile is bound.
	ProfileNone Profile = iota

	// ProfileProvisioning is the Mesh Provisioning Service of an unprovisioned node.
	ProfileProvisioning

	// ProfileProxy is the Mesh Proxy Service of a provisioned node.
	ProfileProxy
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileNone:
		return "NONE"
	case ProfileProvisioning:
		return "PROVISIONING"
	case ProfileProxy:
		return "PROXY"
	default:
		return "UNKNOWN"
	}
}

// SIGUUID expands a 16-bit Bluetooth SIG assigned number to its 128-bit UUID.
func SIGUUID(short uint16) uuid.UUID {
	u := uuid.UUID{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x10, 0x00,
		0x80, 0x00,
		0x00, 0x80, 0x5f, 0x9b, 0x34, 0xfb,
	}
	u[2] = byte(short >> 8)
	u[3] = byte(short)
	return u
}

// Mesh GATT service and characteristic UUIDs.
var (
	ProvisioningService = SIGUUID(0x1827)
	ProvisioningDataIn  = SIGUUID(0x2ADB)
	ProvisioningDataOut = SIGUUID(0x2ADC)

	ProxyService = SIGUUID(0x1828)
	ProxyDataIn  = SIGUUID(0x2ADD)
	ProxyDataOut = SIGUUID(0x2ADE)
)

// Property is the GATT characteristic properties bit field.
type Property uint8

// Characteristic property flags.
const (
	PropBroadcast            Property = 0x01
	PropRead                 Property = 0x02
	PropWriteWithoutResponse Property = 0x04
	PropWrite                Property = 0x08
	PropNotify               Property = 0x10
	PropIndicate             Property = 0x20
	PropAuthenticatedWrites  Property = 0x40
	PropExtendedProperties   Property = 0x80
)

var propertyNames = []struct {
	flag Property
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteWithoutResponse, "write-without-response"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
	{PropAuthenticatedWrites, "authenticated-writes"},
	{PropExtendedProperties, "extended-properties"},
}

// Has reports whether every bit of flag is set.
func (p Property) Has(flag Property) bool {
	return p&flag == flag
}

// String returns the set flags joined with "|".
func (p Property) String() string {
	if p == 0 {
		return "none"
	}
	var names []string
	for _, pn := range propertyNames {
		if p.Has(pn.flag) {
			names = append(names, pn.name)
		}
	}
	return strings.Join(names, "|")
}

// Characteristic is a discovered GATT characteristic.
type Characteristic struct {
	UUID       uuid.UUID
	Properties Property

	// Ref is the link-layer handle for the characteristic. The bearer passes
	// it back to the Link untouched.
	Ref any
}

// Service holds the characteristics of one discovered service, keyed by UUID.
type Service map[uuid.UUID]Characteristic

// Catalog holds the services discovered on a peer, keyed by UUID.
type Catalog map[uuid.UUID]Service

// Binding is the outcome of profile selection: the profile and its two
// channels. The zero value is ProfileNone with no channels.
type Binding struct {
	Profile Profile

	// DataIn is the write target (host to node).
	DataIn Characteristic

	// DataOut is the notification source (node to host).
	DataOut Characteristic
}

// Bound reports whether a profile is selected.
func (b Binding) Bound() bool {
	return b.Profile != ProfileNone
}

type profileLayout struct {
	profile Profile
	service uuid.UUID
	dataIn  uuid.UUID
	dataOut uuid.UUID
}

var (
	proxyLayout        = profileLayout{ProfileProxy, ProxyService, ProxyDataIn, ProxyDataOut}
	provisioningLayout = profileLayout{ProfileProvisioning, ProvisioningService, ProvisioningDataIn, ProvisioningDataOut}
)

// SelectProfile picks the profile a peer exposes.
//
// The Proxy service is checked first: a peer offering it is treated as
// provisioned, and a Proxy service with missing or incapable characteristics
// rejects the peer. Provisioning is only considered when no Proxy service is
// present. Data In must support write-without-response and Data Out must
// support notify.
func SelectProfile(cat Catalog) (Binding, error) {
	if svc, ok := cat[ProxyService]; ok {
		return bindLayout(proxyLayout, svc)
	}
	if svc, ok := cat[ProvisioningService]; ok {
		return bindLayout(provisioningLayout, svc)
	}
	return Binding{}, fmt.Errorf("%w: no mesh service found", ErrUnsupportedPeer)
}

func bindLayout(l profileLayout, svc Service) (Binding, error) {
	in, ok := svc[l.dataIn]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %s service lacks Data In %s", ErrUnsupportedPeer, l.profile, l.dataIn)
	}
	if !in.Properties.Has(PropWriteWithoutResponse) {
		return Binding{}, fmt.Errorf("%w: %s Data In does not support write-without-response (%s)",
			ErrUnsupportedPeer, l.profile, in.Properties)
	}

	out, ok := svc[l.dataOut]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %s service lacks Data Out %s", ErrUnsupportedPeer, l.profile, l.dataOut)
	}
	if !out.Properties.Has(PropNotify) {
		return Binding{}, fmt.Errorf("%w: %s Data Out does not support notify (%s)",
			ErrUnsupportedPeer, l.profile, out.Properties)
	}

	return Binding{Profile: l.profile, DataIn: in, DataOut: out}, nil
}
