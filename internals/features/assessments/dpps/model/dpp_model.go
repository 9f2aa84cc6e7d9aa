package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smartstudy_backend/internals/helpers/video"
)

const DefaultTimeLimitMinutes = 60

// DPPModel: satu DPP per batch lecture
type DPPModel struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LectureID        uuid.UUID `gorm:"column:lecture_id;type:uuid;not null;uniqueIndex" json:"lecture_id"`
	Title            string    `gorm:"column:title;size:200;not null" json:"title"`
	Description      string    `gorm:"column:description;type:text" json:"description"`
	TimeLimitMinutes int       `gorm:"column:time_limit_minutes;not null" json:"time_limit_minutes"`
	TotalMarks       int       `gorm:"column:total_marks;not null" json:"total_marks"`
	IsActive         bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DPPModel) TableName() string { return "dpps" }

func (m *DPPModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.TimeLimitMinutes <= 0 {
		m.TimeLimitMinutes = DefaultTimeLimitMinutes
	}
	return nil
}

type DPPQuestionModel struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DPPID         uuid.UUID      `gorm:"column:dpp_id;type:uuid;not null;index" json:"dpp_id"`
	QuestionType  string         `gorm:"column:question_type;size:20;not null" json:"question_type"`
	QuestionText  string         `gorm:"column:question_text;type:text;not null" json:"question_text"`
	ImageURL      string         `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Options       datatypes.JSON `gorm:"column:options" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"column:correct_answer;size:100;not null" json:"correct_answer"`
	Explanation   string         `gorm:"column:explanation;type:text" json:"explanation"`
	Marks         int            `gorm:"column:marks;not null" json:"marks"`
	OrderIndex    int            `gorm:"column:order_index;not null" json:"order_index"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (DPPQuestionModel) TableName() string { return "dpp_questions" }

func (m *DPPQuestionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Marks == 0 {
		m.Marks = 1
	}
	return nil
}

func (m DPPQuestionModel) OptionMap() map[string]string {
	out := map[string]string{}
	if len(m.Options) > 0 {
		_ = json.Unmarshal(m.Options, &out)
	}
	return out
}

func EncodeOptions(opts map[string]string) datatypes.JSON {
	if len(opts) == 0 {
		return nil
	}
	b, _ := json.Marshal(opts)
	return datatypes.JSON(b)
}

type DPPSolutionModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DPPID       uuid.UUID `gorm:"column:dpp_id;type:uuid;not null;uniqueIndex" json:"dpp_id"`
	SolutionPDF string    `gorm:"column:solution_pdf;type:text" json:"solution_pdf"`
	VideoType   string    `gorm:"column:video_type;size:20" json:"video_type"`
	VideoURL    string    `gorm:"column:video_url;type:text" json:"video_url"`
	VideoFile   string    `gorm:"column:video_file;type:text" json:"video_file"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DPPSolutionModel) TableName() string { return "dpp_solutions" }

func (m *DPPSolutionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m DPPSolutionModel) EmbedURL() string {
	if m.VideoType == video.TypeUpload {
		return m.VideoFile
	}
	return video.EmbedURL(m.VideoType, m.VideoURL)
}
