package store_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/virafm/radiocast/internal/config"
	"github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
)

const (
	insertNewsItemStm = "INSERT INTO news_items (id, url, title, category, urgency) VALUES ('%s', '%s', '%s', '%s', '%s');"
)

var _ = Describe("news item store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		cfg, err := config.New()
		Expect(err).To(BeNil())
		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
	})

	AfterAll(func() {
		s.Close()
	})

	Context("list", func() {
		It("filters by categories", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/a", "a", "politica", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/b", "b", "deportes", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/c", "c", "economia", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())

			items, err := s.NewsItem().List(context.TODO(),
				store.NewNewsItemQueryFilter().ByCategories([]string{"politica", "economia"}),
				store.NewNewsItemQueryOptions())
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(2))
		})

		It("filters by urls", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/a", "a", "general", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/b", "b", "general", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())

			items, err := s.NewsItem().List(context.TODO(),
				store.NewNewsItemQueryFilter().ByUrls([]string{"https://news.cl/b"}),
				store.NewNewsItemQueryOptions())
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(1))
			Expect(items[0].URL).To(Equal("https://news.cl/b"))
		})

		It("sorts high urgency first", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/a", "a", "general", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/b", "b", "general", model.UrgencyHigh))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/c", "c", "general", model.UrgencyMedium))
			Expect(tx.Error).To(BeNil())

			items, err := s.NewsItem().List(context.TODO(),
				store.NewNewsItemQueryFilter(),
				store.NewNewsItemQueryOptions().WithSortOrder(store.SortByUrgency))
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(3))
			Expect(items[0].Urgency).To(Equal(model.UrgencyHigh))
			Expect(items[1].Urgency).To(Equal(model.UrgencyMedium))
			Expect(items[2].Urgency).To(Equal(model.UrgencyLow))
		})

		It("honors the limit option", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/a", "a", "general", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewsItemStm, uuid.NewString(), "https://news.cl/b", "b", "general", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())

			items, err := s.NewsItem().List(context.TODO(),
				store.NewNewsItemQueryFilter(),
				store.NewNewsItemQueryOptions().WithLimit(1))
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(1))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from news_items;")
		})
	})

	Context("upsert", func() {
		It("inserts a fresh article and stamps scraped_at", func() {
			item, err := s.NewsItem().Upsert(context.TODO(), model.NewsItem{
				ID:      uuid.New(),
				URL:     "https://news.cl/fresh",
				Title:   "Titular",
				Urgency: model.UrgencyMedium,
			})
			Expect(err).To(BeNil())
			Expect(item.ScrapedAt).ToNot(BeNil())

			count := 0
			err = gormdb.Raw("SELECT COUNT(*) from news_items;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("refreshes an article seen before by url", func() {
			_, err := s.NewsItem().Upsert(context.TODO(), model.NewsItem{
				ID:      uuid.New(),
				URL:     "https://news.cl/seen",
				Title:   "Titular viejo",
				Urgency: model.UrgencyLow,
			})
			Expect(err).To(BeNil())

			_, err = s.NewsItem().Upsert(context.TODO(), model.NewsItem{
				ID:      uuid.New(),
				URL:     "https://news.cl/seen",
				Title:   "Titular nuevo",
				Content: "Texto actualizado",
				Urgency: model.UrgencyHigh,
			})
			Expect(err).To(BeNil())

			items, err := s.NewsItem().List(context.TODO(),
				store.NewNewsItemQueryFilter().ByUrls([]string{"https://news.cl/seen"}),
				store.NewNewsItemQueryOptions())
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Title).To(Equal("Titular nuevo"))
			Expect(items[0].Urgency).To(Equal(model.UrgencyHigh))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from news_items;")
		})
	})

	Context("delete", func() {
		It("removes the article", func() {
			itemID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertNewsItemStm, itemID.String(), "https://news.cl/gone", "gone", "general", model.UrgencyLow))
			Expect(tx.Error).To(BeNil())

			err := s.NewsItem().Delete(context.TODO(), itemID)
			Expect(err).To(BeNil())

			_, err = s.NewsItem().Get(context.TODO(), itemID)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from news_items;")
		})
	})
})
