package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Структура каталога
	CatInfo                  Code = 1000
	CatMissingRepresentation Code = 1001
	CatInvalidRepresentation Code = 1002
	CatConflict              Code = 1003
	CatMissingSource         Code = 1004
	CatDuplicateFlag         Code = 1005
	CatBadLiteral            Code = 1006
	CatMissingName           Code = 1007
	CatDecode                Code = 1008
	CatEmpty                 Code = 1009

	// Синтаксис compound-выражений
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectExpression Code = 2002
	SynUnclosedParen    Code = 2003
	SynBadNumber        Code = 2004
	SynUnknownChar      Code = 2005

	// Разрешение значений
	ResInfo                  Code = 3000
	ResUnknownReference      Code = 3001
	ResCyclicDefinition      Code = 3002
	ResUnsupportedExpression Code = 3003
	ResValueOverflow         Code = 3004
	ResNonOrOperator         Code = 3005
	ResZeroFlag              Code = 3006

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Генерация кода
	GenInfo              Code = 5000
	GenInvalidIdentifier Code = 5001
	GenNameCollision     Code = 5002

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
	ObsCache   Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	CatInfo:                  "Catalog information",
	CatMissingRepresentation: "Missing representation",
	CatInvalidRepresentation: "Invalid representation",
	CatConflict:              "Conflicting value sources",
	CatMissingSource:         "Missing value source",
	CatDuplicateFlag:         "Duplicate flag",
	CatBadLiteral:            "Bad literal",
	CatMissingName:           "Missing name",
	CatDecode:                "Catalog decode error",
	CatEmpty:                 "Empty catalog",
	SynInfo:                  "Syntax information",
	SynUnexpectedToken:       "Unexpected token",
	SynExpectExpression:      "Expected expression",
	SynUnclosedParen:         "Unclosed parenthesis",
	SynBadNumber:             "Bad number",
	SynUnknownChar:           "Unknown character",
	ResInfo:                  "Resolution information",
	ResUnknownReference:      "Unknown reference",
	ResCyclicDefinition:      "Cyclic definition",
	ResUnsupportedExpression: "Unsupported expression",
	ResValueOverflow:         "Value overflow",
	ResNonOrOperator:         "Operator other than |",
	ResZeroFlag:              "Flag resolves to zero",
	IOLoadFileError:          "I/O load file error",
	GenInfo:                  "Generator information",
	GenInvalidIdentifier:     "Invalid Go identifier",
	GenNameCollision:         "Generated name collision",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Phase timings",
	ObsCache:                 "Resolution cache",
}

// ID returns the stable short form of the code, e.g. RES3002.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CAT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
