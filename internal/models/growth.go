package models

import "time"

// GrowthRecord is a single height/weight measurement for a family member
type GrowthRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MemberID   uint      `gorm:"not null;index" json:"member_id"`
	MeasuredAt time.Time `gorm:"type:date;not null;index" json:"measured_at"`
	HeightCm   float64   `json:"height_cm"`
	WeightKg   float64   `json:"weight_kg"`
	Note       string    `gorm:"size:500" json:"note"`
	RecordedBy string    `gorm:"size:30;not null" json:"recorded_by"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for the GrowthRecord model
func (GrowthRecord) TableName() string {
	return "growth_record"
}

// CreateGrowthRecordRequest represents the data needed to log a measurement
type CreateGrowthRecordRequest struct {
	MeasuredAt time.Time `json:"measured_at" binding:"required"`
	HeightCm   float64   `json:"height_cm" binding:"omitempty,gt=0,lt=300"`
	WeightKg   float64   `json:"weight_kg" binding:"omitempty,gt=0,lt=500"`
	Note       string    `json:"note" binding:"omitempty,max=500"`
}
