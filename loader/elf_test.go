package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/loader"
)

const emRISCV = 243

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("LoadELF", func() {
		Context("with a valid RV64 ELF binary", func() {
			var elfPath string

			BeforeEach(func() {
				elfPath = filepath.Join(tempDir, "test.elf")
				createMinimalRISCV64ELF(elfPath, 0x80000000, 0x80000080, []byte{
					0x13, 0x05, 0xa0, 0x02, // addi a0, zero, 42
					0x67, 0x80, 0x00, 0x00, // ret
				})
			})

			It("should load without error", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog).NotTo(BeNil())
			})

			It("should extract the correct entry point", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint64(0x80000080)))
			})

			It("should load segments into memory", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(len(prog.Segments)).To(BeNumerically(">", 0))
			})

			It("should compute the exit point from the highest loaded address", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.HasExitPoint).To(BeTrue())
				Expect(prog.ExitPoint).To(Equal(uint64(0x80000000 + 8)))
			})
		})

		Context("with segment data", func() {
			It("should correctly load segment contents", func() {
				elfPath := filepath.Join(tempDir, "code.elf")
				codeData := []byte{0x13, 0x05, 0xa0, 0x02, 0x67, 0x80, 0x00, 0x00}
				createMinimalRISCV64ELF(elfPath, 0x80000000, 0x80000000, codeData)

				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())

				var foundSegment *loader.Segment
				for i := range prog.Segments {
					if prog.Segments[i].VirtAddr == 0x80000000 {
						foundSegment = &prog.Segments[i]
						break
					}
				}
				Expect(foundSegment).NotTo(BeNil())
				Expect(foundSegment.Data).To(HaveLen(len(codeData)))
			})
		})

		Context("with an invalid file", func() {
			It("should return error for non-existent file", func() {
				_, err := loader.LoadELF("/nonexistent/path/to/file.elf")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to open"))
			})

			It("should return error for non-ELF file", func() {
				notElfPath := filepath.Join(tempDir, "not-elf.bin")
				err := os.WriteFile(notElfPath, []byte("not an elf file"), 0644)
				Expect(err).NotTo(HaveOccurred())

				_, err = loader.LoadELF(notElfPath)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a non-RISC-V ELF", func() {
			It("should return error for x86-64 ELF", func() {
				elfPath := filepath.Join(tempDir, "x86.elf")
				createMinimalx86ELF(elfPath)

				_, err := loader.LoadELF(elfPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not a RISC-V"))
			})
		})

		Context("with a 32-bit RISC-V ELF", func() {
			It("should load without error", func() {
				elfPath := filepath.Join(tempDir, "rv32.elf")
				createMinimalRISCV32ELF(elfPath, 0x80000000, 0x80000000, []byte{0x13, 0x05, 0xa0, 0x02})

				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Segments).To(HaveLen(1))
			})
		})

		Describe("BSS segments", func() {
			It("should handle segments where Memsz > Filesz", func() {
				elfPath := filepath.Join(tempDir, "bss.elf")
				initialData := []byte{0x01, 0x02, 0x03, 0x04}
				memSize := uint64(1024)
				createBSSSegmentELF(elfPath, 0x80001000, 0x80000000, initialData, memSize)

				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())

				var bssSeg *loader.Segment
				for i := range prog.Segments {
					if prog.Segments[i].VirtAddr == 0x80001000 {
						bssSeg = &prog.Segments[i]
						break
					}
				}
				Expect(bssSeg).NotTo(BeNil())
				Expect(bssSeg.Data).To(Equal(initialData))
				Expect(bssSeg.MemSize).To(Equal(memSize))
			})
		})

		Describe("ELFs with no loadable segments", func() {
			It("should return an empty segments list for an ELF with no PT_LOAD", func() {
				elfPath := filepath.Join(tempDir, "no-load.elf")
				createNoLoadableSegmentsELF(elfPath, 0x80000000)

				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Segments).To(BeEmpty())
				Expect(prog.EntryPoint).To(Equal(uint64(0x80000000)))
			})
		})
	})
})

// createMinimalRISCV64ELF creates a minimal valid RV64 ELF64 binary with one
// PT_LOAD segment.
func createMinimalRISCV64ELF(path string, loadAddr, entryPoint uint64, code []byte) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2 // ELFCLASS64
	elfHeader[5] = 1 // little endian
	elfHeader[6] = 1
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2) // ET_EXEC
	binary.LittleEndian.PutUint16(elfHeader[18:20], emRISCV)
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	binary.LittleEndian.PutUint64(elfHeader[24:32], entryPoint)
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64)
	binary.LittleEndian.PutUint64(elfHeader[40:48], 0)
	binary.LittleEndian.PutUint32(elfHeader[48:52], 0)
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64)
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56)
	binary.LittleEndian.PutUint16(elfHeader[56:58], 1)
	binary.LittleEndian.PutUint16(elfHeader[58:60], 64)
	binary.LittleEndian.PutUint16(elfHeader[60:62], 0)
	binary.LittleEndian.PutUint16(elfHeader[62:64], 0)

	progHeader := make([]byte, 56)
	binary.LittleEndian.PutUint32(progHeader[0:4], 1)   // PT_LOAD
	binary.LittleEndian.PutUint32(progHeader[4:8], 0x5) // PF_R | PF_X
	binary.LittleEndian.PutUint64(progHeader[8:16], 120)
	binary.LittleEndian.PutUint64(progHeader[16:24], loadAddr)
	binary.LittleEndian.PutUint64(progHeader[24:32], loadAddr)
	binary.LittleEndian.PutUint64(progHeader[32:40], uint64(len(code)))
	binary.LittleEndian.PutUint64(progHeader[40:48], uint64(len(code)))
	binary.LittleEndian.PutUint64(progHeader[48:56], 0x1000)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(code)
}

// createMinimalRISCV32ELF creates a minimal valid RV32 ELF32 binary.
func createMinimalRISCV32ELF(path string, loadAddr, entryPoint uint32, code []byte) {
	elfHeader := make([]byte, 52)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 1 // ELFCLASS32
	elfHeader[5] = 1
	elfHeader[6] = 1
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)
	binary.LittleEndian.PutUint16(elfHeader[18:20], emRISCV)
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	binary.LittleEndian.PutUint32(elfHeader[24:28], entryPoint)
	binary.LittleEndian.PutUint32(elfHeader[28:32], 52)
	binary.LittleEndian.PutUint32(elfHeader[32:36], 0)
	binary.LittleEndian.PutUint32(elfHeader[36:40], 0)
	binary.LittleEndian.PutUint16(elfHeader[40:42], 52)
	binary.LittleEndian.PutUint16(elfHeader[42:44], 32)
	binary.LittleEndian.PutUint16(elfHeader[44:46], 1)
	binary.LittleEndian.PutUint16(elfHeader[46:48], 40)
	binary.LittleEndian.PutUint16(elfHeader[48:50], 0)
	binary.LittleEndian.PutUint16(elfHeader[50:52], 0)

	progHeader := make([]byte, 32)
	binary.LittleEndian.PutUint32(progHeader[0:4], 1)   // PT_LOAD
	binary.LittleEndian.PutUint32(progHeader[4:8], 84)  // offset
	binary.LittleEndian.PutUint32(progHeader[8:12], loadAddr)
	binary.LittleEndian.PutUint32(progHeader[12:16], loadAddr)
	binary.LittleEndian.PutUint32(progHeader[16:20], uint32(len(code)))
	binary.LittleEndian.PutUint32(progHeader[20:24], uint32(len(code)))
	binary.LittleEndian.PutUint32(progHeader[24:28], 0x5) // PF_R | PF_X
	binary.LittleEndian.PutUint32(progHeader[28:32], 0x1000)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(code)
}

// createMinimalx86ELF creates a minimal x86-64 ELF to test rejection.
func createMinimalx86ELF(path string) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2
	elfHeader[5] = 1
	elfHeader[6] = 1
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)
	binary.LittleEndian.PutUint16(elfHeader[18:20], 62) // EM_X86_64
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	binary.LittleEndian.PutUint64(elfHeader[24:32], 0)
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64)
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64)
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56)
	binary.LittleEndian.PutUint16(elfHeader[56:58], 0)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
}

// createBSSSegmentELF creates a RISC-V ELF with a segment where Memsz > Filesz.
func createBSSSegmentELF(path string, segAddr, entryPoint uint64, data []byte, memSize uint64) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2
	elfHeader[5] = 1
	elfHeader[6] = 1
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)
	binary.LittleEndian.PutUint16(elfHeader[18:20], emRISCV)
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	binary.LittleEndian.PutUint64(elfHeader[24:32], entryPoint)
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64)
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64)
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56)
	binary.LittleEndian.PutUint16(elfHeader[56:58], 1)

	progHeader := make([]byte, 56)
	binary.LittleEndian.PutUint32(progHeader[0:4], 1)
	binary.LittleEndian.PutUint32(progHeader[4:8], 0x6) // PF_R | PF_W
	binary.LittleEndian.PutUint64(progHeader[8:16], 120)
	binary.LittleEndian.PutUint64(progHeader[16:24], segAddr)
	binary.LittleEndian.PutUint64(progHeader[24:32], segAddr)
	binary.LittleEndian.PutUint64(progHeader[32:40], uint64(len(data)))
	binary.LittleEndian.PutUint64(progHeader[40:48], memSize)
	binary.LittleEndian.PutUint64(progHeader[48:56], 0x1000)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(data)
}

// createNoLoadableSegmentsELF creates a RISC-V ELF with no PT_LOAD segments
// (only PT_NOTE).
func createNoLoadableSegmentsELF(path string, entryPoint uint64) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2
	elfHeader[5] = 1
	elfHeader[6] = 1
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)
	binary.LittleEndian.PutUint16(elfHeader[18:20], emRISCV)
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	binary.LittleEndian.PutUint64(elfHeader[24:32], entryPoint)
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64)
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64)
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56)
	binary.LittleEndian.PutUint16(elfHeader[56:58], 1)

	progHeader := make([]byte, 56)
	binary.LittleEndian.PutUint32(progHeader[0:4], 4) // PT_NOTE
	binary.LittleEndian.PutUint32(progHeader[4:8], 0x4)
	binary.LittleEndian.PutUint64(progHeader[8:16], 120)
	binary.LittleEndian.PutUint64(progHeader[48:56], 4)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
}
