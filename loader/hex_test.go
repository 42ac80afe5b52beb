package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvcore/loader"
)

var _ = Describe("Intel-hex Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "hex-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("should load a single contiguous data record", func() {
		hexPath := filepath.Join(tempDir, "simple.hex")
		// :04 0000 00 13050902 E2 -> data record, addr 0, 4 bytes
		// (LoadHex does not verify the trailing checksum byte)
		lines := []string{
			":0400000013050902E2",
			":00000001FF",
		}
		writeHexFile(hexPath, lines)

		prog, err := loader.LoadHex(hexPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(1))
		Expect(prog.Segments[0].VirtAddr).To(Equal(uint64(0)))
		Expect(prog.Segments[0].Data).To(Equal([]byte{0x13, 0x05, 0x09, 0x02}))
	})

	It("should apply extended linear address records", func() {
		hexPath := filepath.Join(tempDir, "ext.hex")
		lines := []string{
			":02000004800070",
			":0400000013050902E2",
			":00000001FF",
		}
		writeHexFile(hexPath, lines)

		prog, err := loader.LoadHex(hexPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(1))
		Expect(prog.Segments[0].VirtAddr).To(Equal(uint64(0x80000000)))
	})

	It("should return an error for a malformed line", func() {
		hexPath := filepath.Join(tempDir, "bad.hex")
		writeHexFile(hexPath, []string{"not a hex record"})

		_, err := loader.LoadHex(hexPath)
		Expect(err).To(HaveOccurred())
	})

	It("should return an error for a non-existent file", func() {
		_, err := loader.LoadHex("/nonexistent/path.hex")
		Expect(err).To(HaveOccurred())
	})
})

func writeHexFile(path string, lines []string) {
	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()
	for _, l := range lines {
		_, _ = f.WriteString(l + "\n")
	}
}
