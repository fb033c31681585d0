package namehash

//go:generate go run ../../../cmd/namegen -output wellknown.go

// Name pairs a Go identifier with the schema keyword it stands for. The
// table drives cmd/namegen.
type Name struct {
	Ident   string
	Keyword string
	Group   string
}

const (
	GroupStructural = "Structural keywords."
	GroupDatatype   = "Datatype names."
)

// Names is the ordered well-known name table.
var Names = []Name{
	{"VersionInfo", "version_info", GroupStructural},
	{"Namespace", "namespace", GroupStructural},
	{"Packet", "packet", GroupStructural},
	{"Enums", "enums", GroupStructural},
	{"Enum", "enum", GroupStructural},

	{"Boolean", "boolean", GroupDatatype},
	{"Byte", "byte", GroupDatatype},
	{"Ubyte", "ubyte", GroupDatatype},
	{"Short", "short", GroupDatatype},
	{"Ushort", "ushort", GroupDatatype},
	{"Int", "int", GroupDatatype},
	{"Uint", "uint", GroupDatatype},
	{"Long", "long", GroupDatatype},
	{"Ulong", "ulong", GroupDatatype},
	{"Float", "float", GroupDatatype},
	{"Double", "double", GroupDatatype},
	{"Varint", "varint", GroupDatatype},
	{"Varlong", "varlong", GroupDatatype},
	{"VarintEnum", "varint_enum", GroupDatatype},
	{"String", "string", GroupDatatype},
	{"UUID", "uuid", GroupDatatype},
	{"Position", "position", GroupDatatype},
	{"Angle", "angle", GroupDatatype},
	{"ByteArray", "byte_array", GroupDatatype},
	{"PrefixedByteArray", "prefixed_byte_array", GroupDatatype},
	{"PrefixedArray", "prefixed_array", GroupDatatype},
	{"PrefixedOptional", "prefixed_optional", GroupDatatype},
}
