package classfile

// Magic is the class-file magic number, 0xCAFEBABE.
const Magic uint32 = 0xCAFEBABE

// Default class-file version: major 52 / minor 0 (Java 8, the first
// release that makes StackMapTable attributes mandatory).
const (
	DefaultMajorVersion uint16 = 52
	DefaultMinorVersion uint16 = 0
)

// Constant pool tags.
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldref           uint8 = 9
	TagMethodref          uint8 = 10
	TagInterfaceMethodref uint8 = 11
	TagNameAndType        uint8 = 12
)

// Access flags for classes, fields, and methods.
const (
	AccPublic    uint16 = 0x0001
	AccPrivate   uint16 = 0x0002
	AccProtected uint16 = 0x0004
	AccStatic    uint16 = 0x0008
	AccFinal     uint16 = 0x0010
	AccSuper     uint16 = 0x0020
	AccVolatile  uint16 = 0x0040
	AccTransient uint16 = 0x0080
	AccInterface uint16 = 0x0200
	AccAbstract  uint16 = 0x0400
	AccSynthetic uint16 = 0x1000
	AccEnum      uint16 = 0x4000
)

// Attribute names.
const (
	AttrCode                      = "Code"
	AttrStackMapTable             = "StackMapTable"
	AttrExceptions                = "Exceptions"
	AttrSourceFile                = "SourceFile"
	AttrRuntimeVisibleAnnotations = "RuntimeVisibleAnnotations"
)
