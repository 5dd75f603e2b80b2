package memory

import "fmt"

// Offsets into an in-memory PE32+ image. The image is mapped, so every RVA
// resolves as base+rva directly.
const (
	dosMagic      = 0x5A4D // "MZ"
	ntMagic       = 0x00004550
	pe32PlusMagic = 0x20B

	dosLfanewOffset = 0x3C

	// Relative to the optional header.
	optMagicOffset        = 0
	optSizeOfImageOffset  = 56
	optExportTableOffset  = 112 // IMAGE_DIRECTORY_ENTRY_EXPORT rva
	optExportSizeOffset   = 116
	optionalHeaderOffset  = 0x18 // from the NT signature
	exportNumberOfNames   = 24
	exportAddrOfFunctions = 28
	exportAddrOfNames     = 32
	exportAddrOfOrdinals  = 36

	exportNameMax = 512
)

// checkHeaders validates the DOS and NT magic values and returns the
// absolute address of the optional header.
func checkHeaders(r Reader, base uint64) (uint64, error) {
	magic, err := ReadUint16(r, base)
	if err != nil {
		return 0, err
	}
	if magic != dosMagic {
		return 0, fmt.Errorf("%w: bad DOS magic %#x", ErrBadImage, magic)
	}

	lfanew, err := ReadUint32(r, base+dosLfanewOffset)
	if err != nil {
		return 0, err
	}

	ntBase := base + uint64(lfanew)
	sig, err := ReadUint32(r, ntBase)
	if err != nil {
		return 0, err
	}
	if sig != ntMagic {
		return 0, fmt.Errorf("%w: bad NT signature %#x", ErrBadImage, sig)
	}

	opt := ntBase + optionalHeaderOffset
	optMagic, err := ReadUint16(r, opt+optMagicOffset)
	if err != nil {
		return 0, err
	}
	if optMagic != pe32PlusMagic {
		return 0, fmt.Errorf("%w: not a PE32+ image (magic %#x)", ErrBadImage, optMagic)
	}
	return opt, nil
}

// ImageSize reads SizeOfImage from the optional header of the image mapped
// at base.
func ImageSize(r Reader, base uint64) (uint32, error) {
	opt, err := checkHeaders(r, base)
	if err != nil {
		return 0, err
	}
	return ReadUint32(r, opt+optSizeOfImageOffset)
}

// ExportAddress resolves a symbol exported by name from the image mapped at
// base. Forwarder entries are rejected with ErrForwardedExport.
func ExportAddress(r Reader, base uint64, name string) (uint64, error) {
	opt, err := checkHeaders(r, base)
	if err != nil {
		return 0, err
	}

	exportRVA, err := ReadUint32(r, opt+optExportTableOffset)
	if err != nil {
		return 0, err
	}
	exportSize, err := ReadUint32(r, opt+optExportSizeOffset)
	if err != nil {
		return 0, err
	}
	if exportRVA == 0 || exportSize == 0 {
		return 0, fmt.Errorf("%w: image has no export directory", ErrExportNotFound)
	}

	dir := base + uint64(exportRVA)
	numNames, err := ReadUint32(r, dir+exportNumberOfNames)
	if err != nil {
		return 0, err
	}
	funcTable, err := ReadUint32(r, dir+exportAddrOfFunctions)
	if err != nil {
		return 0, err
	}
	nameTable, err := ReadUint32(r, dir+exportAddrOfNames)
	if err != nil {
		return 0, err
	}
	ordinalTable, err := ReadUint32(r, dir+exportAddrOfOrdinals)
	if err != nil {
		return 0, err
	}

	for i := uint32(0); i < numNames; i++ {
		nameRVA, err := ReadUint32(r, base+uint64(nameTable)+uint64(i)*4)
		if err != nil {
			return 0, err
		}
		candidate, err := ReadString(r, base+uint64(nameRVA), exportNameMax)
		if err != nil {
			return 0, err
		}
		if candidate != name {
			continue
		}

		ordinal, err := ReadUint16(r, base+uint64(ordinalTable)+uint64(i)*2)
		if err != nil {
			return 0, err
		}
		fnRVA, err := ReadUint32(r, base+uint64(funcTable)+uint64(ordinal)*4)
		if err != nil {
			return 0, err
		}

		// An address inside the export directory is a forwarder string,
		// not code.
		if fnRVA >= exportRVA && fnRVA < exportRVA+exportSize {
			return 0, fmt.Errorf("%w: %s", ErrForwardedExport, name)
		}
		return base + uint64(fnRVA), nil
	}

	return 0, fmt.Errorf("%w: %s", ErrExportNotFound, name)
}
