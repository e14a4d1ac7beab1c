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
	insertNewscastStm          = "INSERT INTO newscasts (id, title, voice, script, status) VALUES ('%s', '%s', '%s', '%s', '%s');"
	insertNewscastWithJobIDStm = "INSERT INTO newscasts (id, job_id, title, voice, status) VALUES ('%s', '%s', '%s', '%s', '%s');"
)

var _ = Describe("newscast store", Ordered, func() {
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

	Context("get", func() {
		It("returns the newscast by id", func() {
			newscastID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertNewscastStm, newscastID.String(), "Noticiero matinal", "es-US-Neural2-B", "", model.NewscastStatusDraft))
			Expect(tx.Error).To(BeNil())

			newscast, err := s.Newscast().Get(context.TODO(), newscastID)
			Expect(err).To(BeNil())
			Expect(newscast.Title).To(Equal("Noticiero matinal"))
			Expect(newscast.Status).To(Equal(model.NewscastStatusDraft))
		})

		It("returns the newscast by job id", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID.String(), model.JobTypeNewscast, model.JobStatusCompleted, 100))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertNewscastWithJobIDStm, uuid.NewString(), jobID.String(), "Noticiero", "es-US-Neural2-B", model.NewscastStatusDraft))
			Expect(tx.Error).To(BeNil())

			newscast, err := s.Newscast().GetByJobID(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(newscast.JobID).ToNot(BeNil())
			Expect(*newscast.JobID).To(Equal(jobID))
		})

		It("returns ErrRecordNotFound for an unknown id", func() {
			_, err := s.Newscast().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from newscasts;")
			gormdb.Exec("DELETE from jobs;")
		})
	})

	Context("update", func() {
		It("touches only the provided fields", func() {
			newscastID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertNewscastStm, newscastID.String(), "Noticiero", "es-US-Neural2-B", "Buenos días", model.NewscastStatusRendering))
			Expect(tx.Error).To(BeNil())

			audioURL := "https://cdn.radiocast.cl/newscasts/audio.wav"
			status := model.NewscastStatusReady
			duration := 93.5
			newscast, err := s.Newscast().Update(context.TODO(), newscastID, nil, &audioURL, &status, &duration, nil, nil, nil)
			Expect(err).To(BeNil())
			Expect(newscast.Status).To(Equal(model.NewscastStatusReady))
			Expect(newscast.AudioURL).ToNot(BeNil())
			Expect(*newscast.AudioURL).To(Equal(audioURL))
			Expect(newscast.DurationSeconds).To(Equal(93.5))

			// script was not part of the update
			script := ""
			err = gormdb.Raw("SELECT script from newscasts WHERE id = ?;", newscastID).Scan(&script).Error
			Expect(err).To(BeNil())
			Expect(script).To(Equal("Buenos días"))
		})

		It("returns ErrRecordNotFound for an unknown id", func() {
			status := model.NewscastStatusReady
			_, err := s.Newscast().Update(context.TODO(), uuid.New(), nil, nil, &status, nil, nil, nil, nil)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from newscasts;")
		})
	})

	Context("list", func() {
		It("returns newest first", func() {
			tx := gormdb.Exec("INSERT INTO newscasts (id, title, voice, status, created_at) VALUES (?, 'viejo', 'es-US-Neural2-B', 'ready', NOW() - INTERVAL '1 hour');", uuid.NewString())
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec("INSERT INTO newscasts (id, title, voice, status, created_at) VALUES (?, 'nuevo', 'es-US-Neural2-B', 'draft', NOW());", uuid.NewString())
			Expect(tx.Error).To(BeNil())

			newscasts, err := s.Newscast().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(newscasts).To(HaveLen(2))
			Expect(newscasts[0].Title).To(Equal("nuevo"))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from newscasts;")
		})
	})
})
