package memory

import (
	"encoding/binary"
	"errors"
	"testing"
)

// Image-relative layout used by the synthetic PE32+ test image.
const (
	testImageSize = 0x3000
	testLfanew    = 0x80
	testOptional  = testLfanew + optionalHeaderOffset
	testExportRVA = 0x200
	testExportSz  = 0x100
	testFuncTable = 0x300
	testNameTable = 0x340
	testOrdTable  = 0x380
	testNameBlob  = 0x400
)

type testExport struct {
	name      string
	rva       uint32
	forwarded bool
}

// buildTestImage lays out a minimal mapped PE32+ image with the given
// by-name exports.
func buildTestImage(exports []testExport) []byte {
	img := make([]byte, testImageSize)
	put16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(img[off:], v) }
	put32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(img[off:], v) }

	put16(0, dosMagic)
	put32(dosLfanewOffset, testLfanew)
	put32(testLfanew, ntMagic)
	put16(testOptional+optMagicOffset, pe32PlusMagic)
	put32(testOptional+optSizeOfImageOffset, testImageSize)
	put32(testOptional+optExportTableOffset, testExportRVA)
	put32(testOptional+optExportSizeOffset, testExportSz)

	put32(testExportRVA+exportNumberOfNames, uint32(len(exports)))
	put32(testExportRVA+exportAddrOfFunctions, testFuncTable)
	put32(testExportRVA+exportAddrOfNames, testNameTable)
	put32(testExportRVA+exportAddrOfOrdinals, testOrdTable)

	nameOff := testNameBlob
	for i, e := range exports {
		put32(testNameTable+i*4, uint32(nameOff))
		copy(img[nameOff:], e.name)
		nameOff += len(e.name) + 1

		put16(testOrdTable+i*2, uint16(i))

		rva := e.rva
		if e.forwarded {
			// Anything inside the export directory range is a forwarder.
			rva = testExportRVA + 0x10
		}
		put32(testFuncTable+i*4, rva)
	}
	return img
}

func TestImageSize(t *testing.T) {
	const base = 0x7FF700000000
	r := sliceReader{base: base, data: buildTestImage(nil)}

	size, err := ImageSize(r, base)
	if err != nil {
		t.Fatalf("ImageSize error: %v", err)
	}
	if size != testImageSize {
		t.Errorf("ImageSize = %#x, want %#x", size, testImageSize)
	}
}

func TestImageSizeBadMagic(t *testing.T) {
	const base = 0x7FF700000000
	img := buildTestImage(nil)
	img[0] = 'X'
	r := sliceReader{base: base, data: img}

	if _, err := ImageSize(r, base); !errors.Is(err, ErrBadImage) {
		t.Errorf("ImageSize error = %v, want ErrBadImage", err)
	}
}

func TestExportAddress(t *testing.T) {
	const base = 0x7FF700000000
	img := buildTestImage([]testExport{
		{name: "CreateInterface", rva: 0x1000},
		{name: "InstallSchemaBindings", rva: 0x1800},
	})
	r := sliceReader{base: base, data: img}

	addr, err := ExportAddress(r, base, "InstallSchemaBindings")
	if err != nil {
		t.Fatalf("ExportAddress error: %v", err)
	}
	if addr != base+0x1800 {
		t.Errorf("ExportAddress = %#x, want %#x", addr, uint64(base+0x1800))
	}
}

func TestExportAddressNotFound(t *testing.T) {
	const base = 0x7FF700000000
	r := sliceReader{base: base, data: buildTestImage([]testExport{
		{name: "CreateInterface", rva: 0x1000},
	})}

	if _, err := ExportAddress(r, base, "NoSuchExport"); !errors.Is(err, ErrExportNotFound) {
		t.Errorf("ExportAddress error = %v, want ErrExportNotFound", err)
	}
}

func TestExportAddressForwarded(t *testing.T) {
	const base = 0x7FF700000000
	r := sliceReader{base: base, data: buildTestImage([]testExport{
		{name: "Forwarded", forwarded: true},
	})}

	if _, err := ExportAddress(r, base, "Forwarded"); !errors.Is(err, ErrForwardedExport) {
		t.Errorf("ExportAddress error = %v, want ErrForwardedExport", err)
	}
}

func TestInterfaceAddress(t *testing.T) {
	const base = 0x7FF700000000
	img := buildTestImage([]testExport{
		{name: "CreateInterface", rva: 0x1000},
	})
	put32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(img[off:], v) }
	put64 := func(off int, v uint64) { binary.LittleEndian.PutUint64(img[off:], v) }

	// CreateInterface: mov r9, [rip+disp] -> registration list anchor at
	// image+0x1100.
	copy(img[0x1000:], []byte{0x4C, 0x8B, 0x0D})
	put32(0x1003, 0x1100-(0x1000+7))

	// Anchor holds the first node; the node names SchemaSystem_001 and its
	// create thunk lea's the singleton at image+0x2000.
	put64(0x1100, base+0x1200)
	put64(0x1200+interfaceCreateOffset, base+0x1300)
	put64(0x1200+interfaceNameOffset, base+0x1400)
	put64(0x1200+interfaceNextOffset, 0)
	copy(img[0x1300:], []byte{0x48, 0x8D, 0x05})
	put32(0x1303, 0x2000-(0x1300+7))
	copy(img[0x1400:], "SchemaSystem_001\x00")

	r := sliceReader{base: base, data: img}

	addr, err := interfaceAddress(r, base, "SchemaSystem_001")
	if err != nil {
		t.Fatalf("interfaceAddress error: %v", err)
	}
	if addr != base+0x2000 {
		t.Errorf("interfaceAddress = %#x, want %#x", addr, uint64(base+0x2000))
	}

	if _, err := interfaceAddress(r, base, "VEngineClient014"); !errors.Is(err, ErrInterfaceNotFound) {
		t.Errorf("interfaceAddress(missing) error = %v, want ErrInterfaceNotFound", err)
	}
}
