package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Graph loading (reading and decoding *.weft.json documents).
	LoadInfo       Code = 1000
	LoadRead       Code = 1001
	LoadDecode     Code = 1002
	LoadBadKind    Code = 1003
	LoadBadLiteral Code = 1004
	LoadBadField   Code = 1005

	// Reference linking between declarations and libraries.
	LinkInfo           Code = 2000
	LinkDuplicateDecl  Code = 2001
	LinkUnknownName    Code = 2002
	LinkUnknownLibrary Code = 2003

	// Declaration compilation.
	SemaInfo                      Code = 3000
	SemaNameCollision             Code = 3001
	SemaDuplicateAttribute        Code = 3002
	SemaDuplicateAttributeArg     Code = 3003
	SemaUnknownAttributeArg       Code = 3004
	SemaMissingAttributeArg       Code = 3005
	SemaNotConstant               Code = 3006
	SemaIncludeCycle              Code = 3007
	SemaCannotResolveConstant     Code = 3008
	SemaConstOverflow             Code = 3009
	SemaConstTypeMismatch         Code = 3010
	SemaInvalidOrOperand          Code = 3011
	SemaBitsMemberNotPowerOfTwo   Code = 3012
	SemaBitsUnderlyingNotUnsigned Code = 3013
	SemaEnumUnderlyingNotIntegral Code = 3014
	SemaDuplicateMemberValue      Code = 3015
	SemaStrictEnumUnknown         Code = 3016
	SemaMultipleUnknownMembers    Code = 3017
	SemaUnknownValueCollision     Code = 3018
	SemaInvalidDefault            Code = 3019
	SemaDuplicateOrdinal          Code = 3020
	SemaNonDenseOrdinals          Code = 3021
	SemaOrdinalOutOfRange         Code = 3022
	SemaMaxOrdinalNotTable        Code = 3023
	SemaNullableMember            Code = 3024
	SemaStrictUnionEmpty          Code = 3025
	SemaComposeNotProtocol        Code = 3026
	SemaDuplicateCompose          Code = 3027
	SemaDuplicateMethodName       Code = 3028
	SemaDuplicateMethodOrdinal    Code = 3029
	SemaInvalidPayloadType        Code = 3030
	SemaEmptyPayload              Code = 3031
	SemaPayloadMemberDefault      Code = 3032
	SemaServiceMemberNotClientEnd Code = 3033
	SemaServiceMemberNullable     Code = 3034
	SemaServiceTransportMismatch  Code = 3035
	SemaResourceUnderlying        Code = 3036
	SemaResourceMissingSubtype    Code = 3037
	SemaResourceSubtypeNotEnum    Code = 3038
	SemaResourceInvalidRights     Code = 3039
	SemaNotAType                  Code = 3040
	SemaWrongLayoutParams         Code = 3041
	SemaExpectedTypeParam         Code = 3042
	SemaExpectedValueParam        Code = 3043
	SemaInvalidConstraint         Code = 3044
	SemaDuplicateConstraint       Code = 3045
	SemaInvalidBound              Code = 3046
	SemaNewTypeNullable           Code = 3047
	SemaConstInvalidType          Code = 3048
	SemaUnknownMember             Code = 3049
	SemaExpectedProtocol          Code = 3050

	// File system, artifacts, cache.
	IOInfo  Code = 4000
	IOWrite Code = 4001
	IOCache Code = 4002
	IORead  Code = 4003

	// Manifests and project layout.
	ProjectInfo            Code = 5000
	ProjectManifest        Code = 5001
	ProjectMissingManifest Code = 5002
	ProjectCycle           Code = 5003
	ProjectUnknownKey      Code = 5004
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LoadInfo:       "Graph loading information",
	LoadRead:       "Cannot read graph file",
	LoadDecode:     "Malformed graph document",
	LoadBadKind:    "Unknown declaration kind",
	LoadBadLiteral: "Malformed literal",
	LoadBadField:   "Malformed graph field",

	LinkInfo:           "Linking information",
	LinkDuplicateDecl:  "Duplicate declaration name",
	LinkUnknownName:    "Unknown name",
	LinkUnknownLibrary: "Unknown library",

	SemaInfo:                      "Compilation information",
	SemaNameCollision:             "Name collision",
	SemaDuplicateAttribute:        "Duplicate attribute",
	SemaDuplicateAttributeArg:     "Duplicate attribute argument",
	SemaUnknownAttributeArg:       "Unknown attribute argument",
	SemaMissingAttributeArg:       "Missing attribute argument",
	SemaNotConstant:               "Not usable as a constant",
	SemaIncludeCycle:              "Declaration includes itself",
	SemaCannotResolveConstant:     "Cannot resolve constant",
	SemaConstOverflow:             "Constant out of range",
	SemaConstTypeMismatch:         "Constant type mismatch",
	SemaInvalidOrOperand:          "Invalid bitwise OR operand",
	SemaBitsMemberNotPowerOfTwo:   "Bits member not a power of two",
	SemaBitsUnderlyingNotUnsigned: "Bits underlying type not unsigned",
	SemaEnumUnderlyingNotIntegral: "Enum underlying type not integral",
	SemaDuplicateMemberValue:      "Duplicate member value",
	SemaStrictEnumUnknown:         "Unknown member in strict enum",
	SemaMultipleUnknownMembers:    "Multiple unknown members",
	SemaUnknownValueCollision:     "Collision with reserved unknown value",
	SemaInvalidDefault:            "Default not supported here",
	SemaDuplicateOrdinal:          "Duplicate ordinal",
	SemaNonDenseOrdinals:          "Non-dense ordinals",
	SemaOrdinalOutOfRange:         "Ordinal out of range",
	SemaMaxOrdinalNotTable:        "Final table ordinal must be a table",
	SemaNullableMember:            "Member cannot be optional",
	SemaStrictUnionEmpty:          "Strict union has no members",
	SemaComposeNotProtocol:        "Composed declaration is not a protocol",
	SemaDuplicateCompose:          "Protocol composed twice",
	SemaDuplicateMethodName:       "Duplicate method name",
	SemaDuplicateMethodOrdinal:    "Method ordinal collision",
	SemaInvalidPayloadType:        "Invalid method payload type",
	SemaEmptyPayload:              "Empty method payload",
	SemaPayloadMemberDefault:      "Payload member has a default",
	SemaServiceMemberNotClientEnd: "Service member is not a client end",
	SemaServiceMemberNullable:     "Service member cannot be optional",
	SemaServiceTransportMismatch:  "Mixed transports in service",
	SemaResourceUnderlying:        "Resource underlying type must be uint32",
	SemaResourceMissingSubtype:    "Resource missing subtype property",
	SemaResourceSubtypeNotEnum:    "Resource subtype is not an enum",
	SemaResourceInvalidRights:     "Resource rights property invalid",
	SemaNotAType:                  "Not a type",
	SemaWrongLayoutParams:         "Wrong number of layout parameters",
	SemaExpectedTypeParam:         "Expected a type parameter",
	SemaExpectedValueParam:        "Expected a value parameter",
	SemaInvalidConstraint:         "Invalid constraint",
	SemaDuplicateConstraint:       "Duplicate constraint",
	SemaInvalidBound:              "Invalid size bound",
	SemaNewTypeNullable:           "New type cannot wrap an optional type",
	SemaConstInvalidType:          "Invalid constant type",
	SemaUnknownMember:             "Unknown member",
	SemaExpectedProtocol:          "Expected a protocol",

	IOInfo:  "IO information",
	IOWrite: "Write failed",
	IOCache: "Cache failure",
	IORead:  "Read failed",

	ProjectInfo:            "Project information",
	ProjectManifest:        "Invalid manifest",
	ProjectMissingManifest: "Manifest not found",
	ProjectCycle:           "Manifest dependency cycle",
	ProjectUnknownKey:      "Unknown manifest key",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LOD%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("LNK%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
