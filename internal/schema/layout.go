package schema

// Offsets into the target's schema metadata records. These are conventions
// of the target binary, fixed per build and never validated at runtime: a
// successful read only means the bytes were retrievable, not that they mean
// what this layout says they mean.
const (
	// Class info record.
	classNameOffset       = 0x08 // char* (class name)
	classSizeOffset       = 0x18 // u32 (instance size in bytes)
	classFieldCountOffset = 0x1C // u16 (declared field count)
	classFieldTableOffset = 0x28 // ptr (contiguous field record table)

	// Field record table entries.
	fieldRecordStride = 0x20

	// Field record.
	fieldNameOffset     = 0x00 // char*
	fieldTypeOffset     = 0x08 // ptr (type record)
	fieldInstanceOffset = 0x10 // u32 (offset within class instances)

	// Type record.
	typeNameOffset = 0x08 // char*

	// Type scope record.
	scopeModuleNameOffset = 0x08 // char[256], inline
	scopeClassCountOffset = 0x558
	scopeClassTableOffset = 0x560 // ptr (table of class record pointers)

	// Schema system singleton.
	systemScopeCountOffset = 0x190
	systemScopeTableOffset = 0x198 // ptr (table of scope pointers)

	scopeModuleNameMax = 256
	nameMax            = 1024
)
