package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.Black)
	}
	return img
}

var _ = Describe("PrepareImageData", func() {
	When("the image is already PNG", func() {
		It("should return it unchanged", func() {
			var buf bytes.Buffer
			Expect(png.Encode(&buf, testImage())).To(Succeed())

			data, converted, err := PrepareImageData(buf.Bytes(), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeFalse())
			Expect(data).To(Equal(buf.Bytes()))
		})
	})

	When("the image is JPEG", func() {
		It("should convert it to PNG", func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())

			data, converted, err := PrepareImageData(buf.Bytes(), "IMAGE/JPEG ")
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeTrue())
			_, format, err := image.Decode(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
		})
	})

	When("the data is not an image", func() {
		It("should return an error", func() {
			_, _, err := PrepareImageData([]byte("not an image"), "image/jpeg")
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})
})

var _ = Describe("NormalizeMimeType", func() {
	DescribeTable("normalizing",
		func(in, want string) {
			Expect(NormalizeMimeType(in)).To(Equal(want))
		},
		Entry("empty defaults to JPEG", "", "image/jpeg"),
		Entry("lower-cases", "Image/PNG", "image/png"),
		Entry("drops parameters", "image/jpeg; charset=binary", "image/jpeg"),
	)
})

var _ = Describe("isHEIC", func() {
	It("should detect the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEIC(data, "application/octet-stream")).To(BeTrue())
	})

	It("should detect the MIME type", func() {
		Expect(isHEIC(nil, "image/heif")).To(BeTrue())
	})

	It("should reject other data", func() {
		Expect(isHEIC([]byte("\x89PNG\r\n\x1a\n0000"), "image/png")).To(BeFalse())
	})
})
