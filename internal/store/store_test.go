package store_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/virafm/radiocast/internal/config"
	st "github.com/virafm/radiocast/internal/store"
	"github.com/virafm/radiocast/internal/store/model"
	"gorm.io/gorm"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		cfg, err := config.New()
		Expect(err).To(BeNil())

		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	Context("transaction", func() {
		It("insert a job successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			jobID := uuid.New()
			m := model.Job{
				ID:   jobID,
				Type: model.JobTypeNewscast,
			}
			job, err := store.Job().Create(ctx, m)
			Expect(job).ToNot(BeNil())
			Expect(err).To(BeNil())

			// commit
			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from jobs;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rollback a job successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			m := model.Job{
				ID:   uuid.New(),
				Type: model.JobTypeScraping,
			}
			job, err := store.Job().Create(ctx, m)
			Expect(job).ToNot(BeNil())
			Expect(err).To(BeNil())

			// count in the same transaction
			jobs, err := store.Job().List(ctx, st.NewJobQueryFilter(), st.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))

			// rollback
			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from jobs;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from jobs;")
		})
	})

	Context("statistics", func() {
		It("aggregates jobs per type and status", func() {
			for _, j := range []model.Job{
				{ID: uuid.New(), Type: model.JobTypeNewscast, Status: model.JobStatusPending},
				{ID: uuid.New(), Type: model.JobTypeNewscast, Status: model.JobStatusCompleted},
				{ID: uuid.New(), Type: model.JobTypeFinalize, Status: model.JobStatusPending},
			} {
				_, err := store.Job().Create(context.TODO(), j)
				Expect(err).To(BeNil())
			}

			stats, err := store.Statistics(context.TODO())
			Expect(err).To(BeNil())
			Expect(stats.Total).To(Equal(3))
			Expect(stats.TotalByStatus[model.JobStatusPending]).To(Equal(2))
			Expect(stats.TotalByType[model.JobTypeNewscast]).To(Equal(2))
			Expect(stats.QueueDepthByType[model.JobTypeFinalize]).To(Equal(1))
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from jobs;")
		})
	})
})
