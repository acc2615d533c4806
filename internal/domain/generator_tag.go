package domain

type GeneratorTag string

const (
	GeneratorBit        GeneratorTag = "bit"
	GeneratorTinyInt    GeneratorTag = "tinyint"
	GeneratorBool       GeneratorTag = "bool"
	GeneratorBoolean    GeneratorTag = "boolean"
	GeneratorSmallInt   GeneratorTag = "smallint"
	GeneratorMediumInt  GeneratorTag = "mediumint"
	GeneratorInt        GeneratorTag = "int"
	GeneratorInteger    GeneratorTag = "integer"
	GeneratorBigInt     GeneratorTag = "bigint"
	GeneratorDecimal    GeneratorTag = "decimal"
	GeneratorDec        GeneratorTag = "dec"
	GeneratorFloat      GeneratorTag = "float"
	GeneratorDouble     GeneratorTag = "double"
	GeneratorDate       GeneratorTag = "date"
	GeneratorDateTime   GeneratorTag = "datetime"
	GeneratorTimestamp  GeneratorTag = "timestamp"
	GeneratorTime       GeneratorTag = "time"
	GeneratorYear       GeneratorTag = "year"
	GeneratorVarchar    GeneratorTag = "varchar"
	GeneratorChar       GeneratorTag = "char"
	GeneratorBinary     GeneratorTag = "binary"
	GeneratorVarbinary  GeneratorTag = "varbinary"
	GeneratorTinyBlob   GeneratorTag = "tinyblob"
	GeneratorText       GeneratorTag = "text"
	GeneratorMediumText GeneratorTag = "mediumtext"
	GeneratorLongText   GeneratorTag = "longtext"
	GeneratorBlob       GeneratorTag = "blob"
	GeneratorMediumBlob GeneratorTag = "mediumblob"
	GeneratorLongBlob   GeneratorTag = "longblob"
	GeneratorSet        GeneratorTag = "set"
	GeneratorEnum       GeneratorTag = "enum"
)

var generatorTags = []GeneratorTag{
	GeneratorBit, GeneratorTinyInt, GeneratorBool, GeneratorBoolean,
	GeneratorSmallInt, GeneratorMediumInt, GeneratorInt, GeneratorInteger, GeneratorBigInt,
	GeneratorDecimal, GeneratorDec, GeneratorFloat, GeneratorDouble,
	GeneratorDate, GeneratorDateTime, GeneratorTimestamp, GeneratorTime, GeneratorYear,
	GeneratorVarchar, GeneratorChar, GeneratorBinary, GeneratorVarbinary,
	GeneratorTinyBlob,
	GeneratorText, GeneratorMediumText, GeneratorLongText, GeneratorBlob, GeneratorMediumBlob, GeneratorLongBlob,
	GeneratorSet, GeneratorEnum,
}

// GeneratorTags lists every supported generator tag.
func GeneratorTags() []GeneratorTag {
	out := make([]GeneratorTag, len(generatorTags))
	copy(out, generatorTags)
	return out
}

func (t GeneratorTag) IsDate() bool {
	switch t {
	case GeneratorDate, GeneratorDateTime, GeneratorTimestamp:
		return true
	}
	return false
}
