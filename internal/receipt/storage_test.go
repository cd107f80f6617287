package receipt

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
		tmpDir = filepath.Join(GinkgoT().TempDir(), "tickets")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create the base directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	Describe("Save", func() {
		var (
			filename  string
			savedPath string
			err       error
		)

		JustBeforeEach(func() {
			savedPath, err = storage.Save(filename, []byte("ticket image"))
		})

		When("saving succeeds", func() {
			BeforeEach(func() {
				filename = "id_ticket.jpg"
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the name to retrieve it with", func() {
				Expect(savedPath).To(Equal(filename))
			})

			It("should save the file to disk", func() {
				Expect(filepath.Join(tmpDir, filename)).To(BeAnExistingFile())
			})
		})

		When("the name points outside the base directory", func() {
			BeforeEach(func() {
				filename = "../escape.jpg"
			})

			It("should keep the file inside", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedPath).To(Equal("escape.jpg"))
				Expect(filepath.Join(tmpDir, "escape.jpg")).To(BeAnExistingFile())
				Expect(filepath.Join(filepath.Dir(tmpDir), "escape.jpg")).NotTo(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(tmpDir, "a.png"), []byte("png"), 0644)).To(Succeed())
			})

			It("should return its content", func() {
				data, err := storage.Get("a.png")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("png")))
			})
		})

		When("the file does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := storage.Get("missing.png")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})

		When("the name points outside the base directory", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(filepath.Dir(tmpDir), "secret.txt"), []byte("secret"), 0644)).To(Succeed())
			})

			It("should not read the outside file", func() {
				data, err := storage.Get("../secret.txt")
				Expect(err).To(MatchError(ErrNotFound))
				Expect(data).To(BeNil())
			})

			It("should read the confined file of the same name", func() {
				Expect(os.WriteFile(filepath.Join(tmpDir, "secret.txt"), []byte("inside"), 0644)).To(Succeed())
				data, err := storage.Get("../secret.txt")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("inside")))
			})
		})
	})

	Describe("Delete", func() {
		It("should remove the file", func() {
			_, err := storage.Save("a.png", []byte("png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete("a.png")).To(Succeed())
			Expect(filepath.Join(tmpDir, "a.png")).NotTo(BeAnExistingFile())
		})

		It("should fail for a missing file", func() {
			Expect(storage.Delete("missing.png")).NotTo(Succeed())
		})

		It("should not remove files outside the base directory", func() {
			outside := filepath.Join(filepath.Dir(tmpDir), "keep.txt")
			Expect(os.WriteFile(outside, []byte("keep"), 0644)).To(Succeed())
			Expect(storage.Delete("../keep.txt")).NotTo(Succeed())
			Expect(outside).To(BeAnExistingFile())
		})
	})
})
