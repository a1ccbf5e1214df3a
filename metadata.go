package mediaplug

import (
	"fmt"
	"strings"
)

// GraphicsAPI identifies a rendering interface a host surface can offer.
type GraphicsAPI uint8

const (
	GraphicsUnknown GraphicsAPI = iota
	GraphicsSoftware
	GraphicsOpenGL
	GraphicsDirect3D11
	GraphicsVulkan
	GraphicsMetal
	graphicsAPICount
)

var graphicsAPINames = [graphicsAPICount]string{
	GraphicsUnknown:    "unknown",
	GraphicsSoftware:   "software",
	GraphicsOpenGL:     "opengl",
	GraphicsDirect3D11: "d3d11",
	GraphicsVulkan:     "vulkan",
	GraphicsMetal:      "metal",
}

func (g GraphicsAPI) String() string {
	if g >= graphicsAPICount {
		return "unknown"
	}
	return graphicsAPINames[g]
}

// ParseGraphicsAPI parses a name produced by GraphicsAPI.String.
func ParseGraphicsAPI(s string) (GraphicsAPI, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "gl":
		return GraphicsOpenGL, nil
	case "direct3d11":
		return GraphicsDirect3D11, nil
	}
	for i, name := range graphicsAPINames {
		if GraphicsAPI(i) != GraphicsUnknown && name == s {
			return GraphicsAPI(i), nil
		}
	}
	return GraphicsUnknown, fmt.Errorf("unknown graphics api %q", s)
}

// GraphicsAPIs is a set of GraphicsAPI values.
type GraphicsAPIs uint32

// APIs builds a set.
func APIs(apis ...GraphicsAPI) GraphicsAPIs {
	var set GraphicsAPIs
	for _, api := range apis {
		if api != GraphicsUnknown && api < graphicsAPICount {
			set |= 1 << api
		}
	}
	return set
}

// Has reports whether api is in the set. GraphicsUnknown is never a member.
func (s GraphicsAPIs) Has(api GraphicsAPI) bool {
	if api == GraphicsUnknown || api >= graphicsAPICount {
		return false
	}
	return s&(1<<api) != 0
}

// List returns the members in declaration order.
func (s GraphicsAPIs) List() []GraphicsAPI {
	var out []GraphicsAPI
	for api := GraphicsSoftware; api < graphicsAPICount; api++ {
		if s.Has(api) {
			out = append(out, api)
		}
	}
	return out
}

func (s GraphicsAPIs) String() string {
	apis := s.List()
	names := make([]string, len(apis))
	for i, api := range apis {
		names[i] = api.String()
	}
	return strings.Join(names, ",")
}

// License represents the software license of an engine.
type License uint8

const (
	LicenseUnknown     License = iota
	LicenseGPL                 // Copyleft - requires source disclosure
	LicenseLGPL                // Weak copyleft - dynamic linking allowed
	LicenseBSD                 // Permissive
	LicenseProprietary         // Vendor terms
)

// Permissive returns true if the license has no copyleft obligations.
func (l License) Permissive() bool { return l == LicenseBSD }

func (l License) String() string {
	switch l {
	case LicenseGPL:
		return "GPL"
	case LicenseLGPL:
		return "LGPL"
	case LicenseBSD:
		return "BSD"
	case LicenseProprietary:
		return "proprietary"
	default:
		return "unknown"
	}
}

// Metadata describes an engine for display.
type Metadata struct {
	DisplayName string
	Description string
	Author      string
	License     License
	Homepage    string
	Graphics    GraphicsAPIs
}
