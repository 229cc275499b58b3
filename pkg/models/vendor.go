package models

import "strings"

// VendorTag identifies the management dialect of a device. The tag's family
// prefix (text before the first dash) selects the connector implementation.
type VendorTag string

const (
	VendorCiscoIOSXE   VendorTag = "cisco-iosxe"
	VendorCiscoIOSXR   VendorTag = "cisco-iosxr"
	VendorNokiaSROS    VendorTag = "nokia-sros"
	VendorNokiaSRLinux VendorTag = "nokia-srlinux"
	VendorGenericCLI   VendorTag = "generic-cli"
)

// Vendor families, used for connector dispatch and template compatibility.
const (
	FamilyCisco   = "cisco"
	FamilyNokia   = "nokia"
	FamilyGeneric = "generic"
)

// Family returns the vendor family prefix of the tag.
func (v VendorTag) Family() string {
	tag := string(v)
	if idx := strings.Index(tag, "-"); idx > 0 {
		return tag[:idx]
	}

	return tag
}

// SameFamily reports whether two vendor tags belong to the same family.
// Template/device compatibility is a family match, not byte equality,
// because multiple concrete tags share a dialect.
func (v VendorTag) SameFamily(other VendorTag) bool {
	return v.Family() == other.Family()
}

// Valid reports whether the tag is one of the supported dialects.
func (v VendorTag) Valid() bool {
	switch v {
	case VendorCiscoIOSXE, VendorCiscoIOSXR, VendorNokiaSROS, VendorNokiaSRLinux, VendorGenericCLI:
		return true
	default:
		return false
	}
}
