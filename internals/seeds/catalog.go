package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	dppService "smartstudy_backend/internals/features/assessments/dpps/service"
	practiceModel "smartstudy_backend/internals/features/assessments/practice/model"
	practiceService "smartstudy_backend/internals/features/assessments/practice/service"
	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	quizService "smartstudy_backend/internals/features/assessments/quizzes/service"
	batchModel "smartstudy_backend/internals/features/batches/model"
	batchService "smartstudy_backend/internals/features/batches/service"
	courseModel "smartstudy_backend/internals/features/courses/model"
	courseService "smartstudy_backend/internals/features/courses/service"
	"smartstudy_backend/internals/helpers/video"
)

/* ===================== COURSES ===================== */

type questionSeed struct {
	QuestionType  string            `json:"question_type"`
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
	Marks         int               `json:"marks"`
}

type subjectSeed struct {
	Name        string `json:"name"`
	ClassLevel  string `json:"class_level"`
	Stream      string `json:"stream"`
	Description string `json:"description"`
	Chapters    []struct {
		Name     string `json:"name"`
		Lectures []struct {
			Title           string `json:"title"`
			VideoURL        string `json:"video_url"`
			DurationMinutes int    `json:"duration_minutes"`
			IsFree          bool   `json:"is_free"`
		} `json:"lectures"`
		Quiz *struct {
			Title           string         `json:"title"`
			DurationMinutes int            `json:"duration_minutes"`
			Questions       []questionSeed `json:"questions"`
		} `json:"quiz"`
		Practice []struct {
			Title        string `json:"title"`
			QuestionText string `json:"question_text"`
			Difficulty   string `json:"difficulty"`
			Answer       string `json:"answer"`
		} `json:"practice"`
	} `json:"chapters"`
}

func seedCourses(ctx context.Context, db *gorm.DB) error {
	var subjects []subjectSeed
	if err := readJSON("data_courses.json", &subjects); err != nil {
		return err
	}
	courses := courseService.New(db)
	quizzes := quizService.New(db)
	practice := practiceService.New(db)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, in := range subjects {
		var n int64
		if err := db.WithContext(ctx).Model(&courseModel.SubjectModel{}).
			Where("name = ? AND class_level = ? AND stream = ?", in.Name, in.ClassLevel, in.Stream).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			log.Printf("[SEED] ℹ️ subject '%s %s %s' sudah ada, dilewati", in.Name, in.ClassLevel, in.Stream)
			continue
		}

		sub := courseModel.SubjectModel{
			Name: in.Name, ClassLevel: in.ClassLevel, Stream: in.Stream,
			Description: in.Description, IsActive: true,
		}
		if err := courses.CreateSubject(ctx, &sub); err != nil {
			return fmt.Errorf("subject %s: %w", in.Name, err)
		}

		for ci, chIn := range in.Chapters {
			ch := courseModel.ChapterModel{SubjectID: sub.ID, Name: chIn.Name, OrderIndex: ci + 1}
			if err := courses.CreateChapter(ctx, &ch); err != nil {
				return fmt.Errorf("chapter %s: %w", chIn.Name, err)
			}
			for li, l := range chIn.Lectures {
				lec := courseModel.CourseLectureModel{
					ChapterID: ch.ID, Title: l.Title, VideoURL: l.VideoURL,
					DurationMinutes: l.DurationMinutes, OrderIndex: li + 1, IsFree: l.IsFree,
				}
				if err := courses.CreateLecture(ctx, &lec); err != nil {
					return fmt.Errorf("lecture %s: %w", l.Title, err)
				}
			}

			if q := chIn.Quiz; q != nil {
				quiz := quizModel.QuizModel{ChapterID: ch.ID, Title: q.Title, DurationMinutes: q.DurationMinutes, IsActive: true}
				if err := quizzes.Create(ctx, &quiz); err != nil {
					return fmt.Errorf("quiz %s: %w", q.Title, err)
				}
				qs := make([]*quizModel.QuizQuestionModel, 0, len(q.Questions))
				for i, qq := range q.Questions {
					qs = append(qs, &quizModel.QuizQuestionModel{
						QuestionText:  qq.QuestionText,
						Options:       quizModel.EncodeOptions(qq.Options),
						CorrectAnswer: qq.CorrectAnswer,
						Explanation:   qq.Explanation,
						Marks:         qq.Marks,
						OrderIndex:    i + 1,
					})
				}
				if err := quizzes.AddQuestions(ctx, quiz.ID, qs); err != nil {
					return fmt.Errorf("quiz questions %s: %w", q.Title, err)
				}
			}

			for _, p := range chIn.Practice {
				ans := p.Answer
				dpp := practiceModel.DailyPracticeProblemModel{
					ChapterID: ch.ID, Title: p.Title, QuestionText: p.QuestionText,
					Difficulty: p.Difficulty, DateAssigned: today, Answer: &ans,
				}
				if err := practice.Create(ctx, &dpp); err != nil {
					return fmt.Errorf("practice %s: %w", p.Title, err)
				}
			}
		}
		log.Printf("[SEED] ✅ subject '%s' (%s)", sub.Name, sub.Slug)
	}
	return nil
}

/* ===================== BATCHES ===================== */

type categorySeed struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Batches     []struct {
		Name        string `json:"name"`
		Price       string `json:"price"`
		IsFree      bool   `json:"is_free"`
		Description string `json:"description"`
		Subjects    []struct {
			Name     string `json:"name"`
			Lectures []struct {
				TopicName       string `json:"topic_name"`
				DayNumber       int    `json:"day_number"`
				VideoType       string `json:"video_type"`
				VideoURL        string `json:"video_url"`
				DurationMinutes int    `json:"duration_minutes"`
				DPP             *struct {
					Title            string         `json:"title"`
					TimeLimitMinutes int            `json:"time_limit_minutes"`
					Questions        []questionSeed `json:"questions"`
					SolutionVideoURL string         `json:"solution_video_url"`
				} `json:"dpp"`
			} `json:"lectures"`
		} `json:"subjects"`
	} `json:"batches"`
}

func seedBatches(ctx context.Context, db *gorm.DB) error {
	var cats []categorySeed
	if err := readJSON("data_batches.json", &cats); err != nil {
		return err
	}
	batches := batchService.New(db)
	dpps := dppService.New(db)

	for ci, cIn := range cats {
		var cat batchModel.CategoryModel
		err := db.WithContext(ctx).Where("name = ?", cIn.Category).First(&cat).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			cat = batchModel.CategoryModel{Name: cIn.Category, Description: cIn.Description, IsActive: true, SortOrder: ci + 1}
			if err := batches.CreateCategory(ctx, &cat); err != nil {
				return fmt.Errorf("category %s: %w", cIn.Category, err)
			}
		default:
			return err
		}

		for bi, bIn := range cIn.Batches {
			var n int64
			if err := db.WithContext(ctx).Model(&batchModel.BatchModel{}).
				Where("category_id = ? AND name = ?", cat.ID, bIn.Name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				log.Printf("[SEED] ℹ️ batch '%s' sudah ada, dilewati", bIn.Name)
				continue
			}
			price := decimal.Zero
			if bIn.Price != "" {
				if price, err = decimal.NewFromString(bIn.Price); err != nil {
					return fmt.Errorf("batch %s price: %w", bIn.Name, err)
				}
			}
			b := batchModel.BatchModel{
				CategoryID: cat.ID, Name: bIn.Name, Description: bIn.Description,
				Price: price, IsFree: bIn.IsFree, IsActive: true, SortOrder: bi + 1,
			}
			if err := batches.CreateBatch(ctx, &b); err != nil {
				return fmt.Errorf("batch %s: %w", bIn.Name, err)
			}

			for si, sIn := range bIn.Subjects {
				sub := batchModel.BatchSubjectModel{BatchID: b.ID, Name: sIn.Name, OrderIndex: si + 1}
				if err := batches.CreateSubject(ctx, &sub); err != nil {
					return fmt.Errorf("batch subject %s: %w", sIn.Name, err)
				}
				for _, lIn := range sIn.Lectures {
					lec := batchModel.BatchLectureModel{
						BatchSubjectID: sub.ID, TopicName: lIn.TopicName, DayNumber: lIn.DayNumber,
						VideoType: lIn.VideoType, VideoURL: lIn.VideoURL,
						DurationMinutes: lIn.DurationMinutes, IsActive: true,
					}
					if err := batches.CreateLecture(ctx, &lec); err != nil {
						return fmt.Errorf("batch lecture %s: %w", lIn.TopicName, err)
					}
					if lIn.DPP == nil {
						continue
					}
					if err := seedDPP(ctx, dpps, lec.ID, lIn.DPP.Title, lIn.DPP.TimeLimitMinutes, lIn.DPP.Questions, lIn.DPP.SolutionVideoURL); err != nil {
						return fmt.Errorf("dpp %s: %w", lIn.DPP.Title, err)
					}
				}
			}
			log.Printf("[SEED] ✅ batch '%s' (%s)", b.Name, b.Slug)
		}
	}
	return nil
}

func seedDPP(ctx context.Context, svc *dppService.DPPService, lectureID uuid.UUID, title string, limit int, questions []questionSeed, solutionURL string) error {
	dpp := dppModel.DPPModel{LectureID: lectureID, Title: title, TimeLimitMinutes: limit, IsActive: true}
	if err := svc.Create(ctx, &dpp); err != nil {
		return err
	}
	qs := make([]*dppModel.DPPQuestionModel, 0, len(questions))
	for i, q := range questions {
		qs = append(qs, &dppModel.DPPQuestionModel{
			QuestionType:  q.QuestionType,
			QuestionText:  q.QuestionText,
			Options:       dppModel.EncodeOptions(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Marks:         q.Marks,
			OrderIndex:    i + 1,
		})
	}
	if err := svc.AddQuestions(ctx, dpp.ID, qs); err != nil {
		return err
	}
	if solutionURL == "" {
		return nil
	}
	_, _, err := svc.UpsertSolution(ctx, dpp.ID, dppModel.DPPSolutionModel{VideoType: video.TypeYouTube, VideoURL: solutionURL})
	return err
}
