package handle

import (
	"github.com/openfroyo/mcuconf/pkg/mcu"
)

// PackageType is the package family code reported across the boundary.
// The values are stable; new families are appended.
type PackageType int32

const (
	PackageTypeNone PackageType = iota
	PackageTypeLQFP
	PackageTypeTSSOP
	PackageTypeWLCSP
	PackageTypeUFQFPN
	PackageTypeTFBGA
	PackageTypeVFQFPN
	PackageTypeEWLCSP
	PackageTypeUFBGA
	PackageTypeLFBGA
)

// PackageTypeOf maps a package family onto its code. Unknown and absent
// packages are PackageTypeNone.
func PackageTypeOf(f mcu.PackageFamily) PackageType {
	switch f {
	case mcu.PackageLQFP:
		return PackageTypeLQFP
	case mcu.PackageTSSOP:
		return PackageTypeTSSOP
	case mcu.PackageWLCSP:
		return PackageTypeWLCSP
	case mcu.PackageUFQFPN:
		return PackageTypeUFQFPN
	case mcu.PackageTFBGA:
		return PackageTypeTFBGA
	case mcu.PackageVFQFPN:
		return PackageTypeVFQFPN
	case mcu.PackageEWLCSP:
		return PackageTypeEWLCSP
	case mcu.PackageUFBGA:
		return PackageTypeUFBGA
	case mcu.PackageLFBGA:
		return PackageTypeLFBGA
	default:
		return PackageTypeNone
	}
}

// PackageType returns the package family code of h, or PackageTypeNone when
// h is not live.
func (r *Registry) PackageType(h ConfigHandle) PackageType {
	pkg, ok := r.Package(h)
	if !ok {
		return PackageTypeNone
	}
	return PackageTypeOf(pkg.Family())
}
