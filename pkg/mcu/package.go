package mcu

import (
	"fmt"
	"regexp"
	"strconv"
)

// PackageFamily is the physical package style of a chip.
type PackageFamily string

const (
	PackageLQFP    PackageFamily = "LQFP"
	PackageTSSOP   PackageFamily = "TSSOP"
	PackageWLCSP   PackageFamily = "WLCSP"
	PackageUFQFPN  PackageFamily = "UFQFPN"
	PackageTFBGA   PackageFamily = "TFBGA"
	PackageVFQFPN  PackageFamily = "VFQFPN"
	PackageEWLCSP  PackageFamily = "EWLCSP"
	PackageUFBGA   PackageFamily = "UFBGA"
	PackageLFBGA   PackageFamily = "LFBGA"
	PackageUnknown PackageFamily = "Unknown"
)

var packagePattern = regexp.MustCompile(`^([A-Za-z]*)(\d+)$`)

// Package is a chip package such as LQFP48.
type Package struct {
	designator string
	family     PackageFamily
	pins       uint16
}

// ParsePackage parses a package designator like "LQFP48" or "TFBGA144".
// Unknown families are kept with PackageUnknown; a missing pin count is an
// error.
func ParsePackage(s string) (Package, error) {
	m := packagePattern.FindStringSubmatch(s)
	if m == nil {
		return Package{}, fmt.Errorf("mcu: invalid package %q", s)
	}

	count, err := strconv.ParseUint(m[2], 10, 16)
	if err != nil {
		return Package{}, fmt.Errorf("mcu: invalid package pin count %q: %w", s, err)
	}

	family := PackageFamily(m[1])
	switch family {
	case PackageLQFP, PackageTSSOP, PackageWLCSP, PackageUFQFPN, PackageTFBGA,
		PackageVFQFPN, PackageEWLCSP, PackageUFBGA, PackageLFBGA:
	default:
		family = PackageUnknown
	}

	return Package{designator: s, family: family, pins: uint16(count)}, nil
}

// Family returns the package family.
func (p Package) Family() PackageFamily { return p.family }

// Pins returns the package pin count.
func (p Package) Pins() uint16 { return p.pins }

// IsGrid reports whether pins are addressed as a ball grid.
func (p Package) IsGrid() bool {
	switch p.family {
	case PackageUFBGA, PackageTFBGA, PackageEWLCSP, PackageWLCSP, PackageLFBGA:
		return true
	}
	return false
}

// IsZero reports whether no package was declared.
func (p Package) IsZero() bool { return p.family == "" }

func (p Package) String() string {
	return p.designator
}
