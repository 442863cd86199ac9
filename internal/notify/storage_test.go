package notify

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "captures"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the directory", func() {
		info, err := os.Stat(filepath.Join(tmpDir, "captures"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("saves and reads back a file", func() {
		path, err := storage.Save("id-1.png", []byte("png"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("id-1.png"))

		data, err := storage.Get(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("png")))
	})

	It("keeps files inside the base directory", func() {
		path, err := storage.Save("../../escape.png", []byte("png"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("escape.png"))
		Expect(filepath.Join(tmpDir, "captures", "escape.png")).To(BeAnExistingFile())
		Expect(filepath.Join(tmpDir, "escape.png")).NotTo(BeAnExistingFile())
	})

	It("deletes a file", func() {
		path, err := storage.Save("gone.png", []byte("png"))
		Expect(err).NotTo(HaveOccurred())
		Expect(storage.Delete(path)).To(Succeed())

		_, err = storage.Get(path)
		Expect(err).To(HaveOccurred())
	})

	It("fails to delete a missing file", func() {
		Expect(storage.Delete("missing.png")).To(HaveOccurred())
	})
})
