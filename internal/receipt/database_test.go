package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alvaro44-cmyk/botty-ocr-backend/internal/ticket"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	newAnalysis := func(id string, createdAt time.Time) *Analysis {
		return &Analysis{
			ID:          id,
			Filename:    id + "_ticket.jpg",
			ContentType: "image/jpeg",
			Scanner:     "tesseract",
			RawText:     "BAR PEPE\nCafe 1,20",
			Receipt:     ticket.Parse("BAR PEPE\nCafe 1,20"),
			CreatedAt:   createdAt,
		}
	}

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveAnalysis", func() {
		It("should round-trip the receipt", func() {
			Expect(db.SaveAnalysis(newAnalysis("a1", time.Now()))).To(Succeed())

			saved, err := db.GetAnalysis("a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(*saved.Receipt.Establishment).To(Equal("BAR PEPE"))
			Expect(saved.Receipt.Date).To(BeNil())
			Expect(saved.Receipt.Products).To(HaveLen(1))
			Expect(saved.Receipt.Products[0].Price.String()).To(Equal("1.20"))
			Expect(saved.Receipt.Total.String()).To(Equal("1.20"))
		})

		It("should overwrite an existing analysis", func() {
			a := newAnalysis("a1", time.Now())
			Expect(db.SaveAnalysis(a)).To(Succeed())
			a.Scanner = "gemini"
			Expect(db.SaveAnalysis(a)).To(Succeed())

			saved, err := db.GetAnalysis("a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Scanner).To(Equal("gemini"))
		})
	})

	Describe("GetAnalysis", func() {
		When("the analysis does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := db.GetAnalysis("missing")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListAnalyses", func() {
		When("the database is empty", func() {
			It("should return an empty list", func() {
				analyses, err := db.ListAnalyses()
				Expect(err).NotTo(HaveOccurred())
				Expect(analyses).NotTo(BeNil())
				Expect(analyses).To(BeEmpty())
			})
		})

		When("several analyses exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
				Expect(db.SaveAnalysis(newAnalysis("old", base))).To(Succeed())
				Expect(db.SaveAnalysis(newAnalysis("new", base.Add(2*time.Hour)))).To(Succeed())
				Expect(db.SaveAnalysis(newAnalysis("mid", base.Add(time.Hour)))).To(Succeed())
			})

			It("should return them newest first", func() {
				analyses, err := db.ListAnalyses()
				Expect(err).NotTo(HaveOccurred())
				ids := []string{analyses[0].ID, analyses[1].ID, analyses[2].ID}
				Expect(ids).To(Equal([]string{"new", "mid", "old"}))
			})
		})
	})

	Describe("DeleteAnalysis", func() {
		It("should remove the analysis", func() {
			Expect(db.SaveAnalysis(newAnalysis("a1", time.Now()))).To(Succeed())
			Expect(db.DeleteAnalysis("a1")).To(Succeed())

			_, err := db.GetAnalysis("a1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should return ErrNotFound for unknown IDs", func() {
			Expect(db.DeleteAnalysis("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("reopening", func() {
		It("should keep saved analyses", func() {
			Expect(db.SaveAnalysis(newAnalysis("a1", time.Now()))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.GetAnalysis("a1")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
