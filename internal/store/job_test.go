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
	insertJobStm = "INSERT INTO jobs (id, type, status, progress) VALUES ('%s', '%s', '%s', %d);"
)

var _ = Describe("job store", Ordered, func() {
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
		It("successfully list all the jobs", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeScraping, model.JobStatusCompleted, 100))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter(), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
		})

		It("filters by type", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeScraping, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByType(model.JobTypeScraping), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Type).To(Equal(model.JobTypeScraping))
		})

		It("filters by status", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusFailed, 40))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByStatus(model.JobStatusFailed), store.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Status).To(Equal(model.JobStatusFailed))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from jobs;")
		})
	})

	Context("get", func() {
		It("returns the job by id", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeFinalize, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.ID).To(Equal(jobID))
			Expect(job.Type).To(Equal(model.JobTypeFinalize))
		})

		It("returns ErrRecordNotFound for an unknown id", func() {
			_, err := s.Job().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from jobs;")
		})
	})

	Context("create", func() {
		It("defaults the status to pending", func() {
			job, err := s.Job().Create(context.TODO(), model.Job{
				ID:     uuid.New(),
				Type:   model.JobTypeNewscast,
				Config: []byte(`{"region":"Valparaíso"}`),
			})
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusPending))
		})

		It("rejects duplicated ids", func() {
			jobID := uuid.New()
			_, err := s.Job().Create(context.TODO(), model.Job{ID: jobID, Type: model.JobTypeNewscast})
			Expect(err).To(BeNil())

			_, err = s.Job().Create(context.TODO(), model.Job{ID: jobID, Type: model.JobTypeNewscast})
			Expect(err).To(MatchError(store.ErrDuplicateKey))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from jobs;")
		})
	})

	Context("lifecycle", func() {
		It("stamps started_at when the job starts processing", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateStatus(context.TODO(), jobID, model.JobStatusProcessing, nil, nil)
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.JobStatusProcessing))
			Expect(job.StartedAt).ToNot(BeNil())
		})

		It("forces progress to 100 on completion", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusProcessing, 60))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateStatus(context.TODO(), jobID, model.JobStatusCompleted, nil, nil)
			Expect(err).To(BeNil())
			Expect(job.Progress).To(Equal(100))
			Expect(job.CompletedAt).ToNot(BeNil())
		})

		It("records the failure message and kind", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeFinalize, model.JobStatusProcessing, 30))
			Expect(tx.Error).To(BeNil())

			msg := "synthesis failed"
			kind := "dependency"
			job, err := s.Job().UpdateStatus(context.TODO(), jobID, model.JobStatusFailed, &msg, &kind)
			Expect(err).To(BeNil())
			Expect(job.Error).To(Equal(msg))
			Expect(job.ErrorKind).To(Equal(kind))
		})

		It("rejects skipping the processing state", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateStatus(context.TODO(), jobID, model.JobStatusCompleted, nil, nil)
			Expect(err).To(MatchError(store.ErrInvalidTransition))
		})

		It("never resurrects a terminal job", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusCancelled, 0))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateStatus(context.TODO(), jobID, model.JobStatusProcessing, nil, nil)
			Expect(err).To(MatchError(store.ErrJobAlreadyTerminated))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from jobs;")
		})
	})

	Context("progress", func() {
		It("updates progress and message", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusProcessing, 10))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateProgress(context.TODO(), jobID, 45, "Generando guion")
			Expect(err).To(BeNil())
			Expect(job.Progress).To(Equal(45))
			Expect(job.ProgressMessage).To(Equal("Generando guion"))
		})

		It("clamps progress into the 0-100 range", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusProcessing, 10))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateProgress(context.TODO(), jobID, 150, "")
			Expect(err).To(BeNil())
			Expect(job.Progress).To(Equal(100))
		})

		It("never moves progress backwards", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusProcessing, 0))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateProgress(context.TODO(), jobID, 80, "Sintetizando audio")
			Expect(err).To(BeNil())
			Expect(job.Progress).To(Equal(80))

			// a stale heartbeat carries a lower value
			job, err = s.Job().UpdateProgress(context.TODO(), jobID, 10, "Buscando noticias")
			Expect(err).To(BeNil())
			Expect(job.Progress).To(Equal(80))

			progress := 0
			err = gormdb.Raw("SELECT progress from jobs WHERE id = ?;", jobID).Scan(&progress).Error
			Expect(err).To(BeNil())
			Expect(progress).To(Equal(80))
		})

		It("drops late heartbeats on terminal jobs", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusCompleted, 100))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateProgress(context.TODO(), jobID, 50, "late")
			Expect(err).To(BeNil())

			progress := 0
			err = gormdb.Raw("SELECT progress from jobs WHERE id = ?;", jobID).Scan(&progress).Error
			Expect(err).To(BeNil())
			Expect(progress).To(Equal(100))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from jobs;")
		})
	})

	Context("count", func() {
		It("counts jobs per type and statuses", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusPending, 0))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusProcessing, 50))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, uuid.NewString(), model.JobTypeNewscast, model.JobStatusFailed, 50))
			Expect(tx.Error).To(BeNil())

			count, err := s.Job().CountByStatus(context.TODO(), model.JobTypeNewscast, []string{model.JobStatusPending, model.JobStatusProcessing})
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from jobs;")
		})
	})
})
