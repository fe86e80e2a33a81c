package ucode

// VertexFormat enumerates the data formats a vertex fetch can decode.
// Values match the fetch constant encoding, which is why they are sparse.
type VertexFormat uint32

const (
	FormatUndefined        VertexFormat = 0
	Format8_8_8_8          VertexFormat = 6
	Format2_10_10_10       VertexFormat = 7
	Format10_11_11         VertexFormat = 16
	Format11_11_10         VertexFormat = 17
	Format16_16            VertexFormat = 25
	Format16_16_16_16      VertexFormat = 26
	Format16_16Float       VertexFormat = 31
	Format16_16_16_16Float VertexFormat = 32
	Format32               VertexFormat = 33
	Format32_32            VertexFormat = 34
	Format32_32_32_32      VertexFormat = 35
	Format32Float          VertexFormat = 36
	Format32_32Float       VertexFormat = 37
	Format32_32_32_32Float VertexFormat = 38
	Format32_32_32Float    VertexFormat = 57
)

var vertexFormatNames = map[VertexFormat]string{
	FormatUndefined:        "undefined",
	Format8_8_8_8:          "8_8_8_8",
	Format2_10_10_10:       "2_10_10_10",
	Format10_11_11:         "10_11_11",
	Format11_11_10:         "11_11_10",
	Format16_16:            "16_16",
	Format16_16_16_16:      "16_16_16_16",
	Format16_16Float:       "16_16_FLOAT",
	Format16_16_16_16Float: "16_16_16_16_FLOAT",
	Format32:               "32",
	Format32_32:            "32_32",
	Format32_32_32_32:      "32_32_32_32",
	Format32Float:          "32_FLOAT",
	Format32_32Float:       "32_32_FLOAT",
	Format32_32_32_32Float: "32_32_32_32_FLOAT",
	Format32_32_32Float:    "32_32_32_FLOAT",
}

// String returns the format name used in fetch disassembly.
func (f VertexFormat) String() string {
	if s, ok := vertexFormatNames[f]; ok {
		return s
	}
	return "unknown"
}

// VertexFormatFromString resolves a disassembly format name. The second
// return value is false for unknown names.
func VertexFormatFromString(s string) (VertexFormat, bool) {
	for f, name := range vertexFormatNames {
		if name == s {
			return f, true
		}
	}
	return FormatUndefined, false
}

// SizeInWords returns the number of 32-bit words one fetched element of the
// format occupies.
func (f VertexFormat) SizeInWords() uint32 {
	switch f {
	case Format8_8_8_8, Format2_10_10_10, Format10_11_11, Format11_11_10,
		Format16_16, Format16_16Float, Format32, Format32Float:
		return 1
	case Format16_16_16_16, Format16_16_16_16Float, Format32_32,
		Format32_32Float:
		return 2
	case Format32_32_32Float:
		return 3
	case Format32_32_32_32, Format32_32_32_32Float:
		return 4
	}
	return 0
}

// TextureDimension enumerates the dimensionality of a texture fetch.
type TextureDimension uint32

const (
	Dimension1D TextureDimension = iota
	Dimension2D
	Dimension3D
	DimensionCube
)

// String returns the dimension suffix used in fetch mnemonics.
func (d TextureDimension) String() string {
	switch d {
	case Dimension1D:
		return "1d"
	case Dimension2D:
		return "2d"
	case Dimension3D:
		return "3d"
	case DimensionCube:
		return "cube"
	}
	return "unknown"
}

// TextureDimensionFromString resolves a dimension suffix.
func TextureDimensionFromString(s string) (TextureDimension, bool) {
	switch s {
	case "1d":
		return Dimension1D, true
	case "2d":
		return Dimension2D, true
	case "3d":
		return Dimension3D, true
	case "cube":
		return DimensionCube, true
	}
	return Dimension1D, false
}

// TextureFilter enumerates per-axis filter overrides. FilterUseFetchConst
// defers to the bound sampler state instead of overriding it.
type TextureFilter uint32

const (
	FilterPoint TextureFilter = iota
	FilterLinear
	FilterBaseMap
	FilterUseFetchConst
)

// String returns the filter name used in fetch attribute disassembly.
func (f TextureFilter) String() string {
	switch f {
	case FilterPoint:
		return "point"
	case FilterLinear:
		return "linear"
	case FilterBaseMap:
		return "basemap"
	case FilterUseFetchConst:
		return "fetchconst"
	}
	return "unknown"
}

// TextureFilterFromString resolves a filter name.
func TextureFilterFromString(s string) (TextureFilter, bool) {
	switch s {
	case "point":
		return FilterPoint, true
	case "linear":
		return FilterLinear, true
	case "basemap":
		return FilterBaseMap, true
	case "fetchconst":
		return FilterUseFetchConst, true
	}
	return FilterUseFetchConst, false
}

// AnisoFilter enumerates anisotropic filter overrides.
type AnisoFilter uint32

const (
	AnisoDisabled AnisoFilter = iota
	AnisoMax1To1
	AnisoMax2To1
	AnisoMax4To1
	AnisoMax8To1
	AnisoMax16To1

	AnisoUseFetchConst AnisoFilter = 7
)

// String returns the aniso name used in fetch attribute disassembly.
func (f AnisoFilter) String() string {
	switch f {
	case AnisoDisabled:
		return "disabled"
	case AnisoMax1To1:
		return "max1to1"
	case AnisoMax2To1:
		return "max2to1"
	case AnisoMax4To1:
		return "max4to1"
	case AnisoMax8To1:
		return "max8to1"
	case AnisoMax16To1:
		return "max16to1"
	case AnisoUseFetchConst:
		return "fetchconst"
	}
	return "unknown"
}

// AnisoFilterFromString resolves an aniso filter name.
func AnisoFilterFromString(s string) (AnisoFilter, bool) {
	switch s {
	case "disabled":
		return AnisoDisabled, true
	case "max1to1":
		return AnisoMax1To1, true
	case "max2to1":
		return AnisoMax2To1, true
	case "max4to1":
		return AnisoMax4To1, true
	case "max8to1":
		return AnisoMax8To1, true
	case "max16to1":
		return AnisoMax16To1, true
	case "fetchconst":
		return AnisoUseFetchConst, true
	}
	return AnisoUseFetchConst, false
}
