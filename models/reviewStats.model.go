package models

// ServiceReviewStatsRow is one row of the service_review_stats view.
type ServiceReviewStatsRow struct {
	ServiceID    uint
	ServiceName  string
	ServiceIcon  string
	TotalReviews int
	RatingSum    int
	Rating1Count int `gorm:"column:rating_1_count"`
	Rating2Count int `gorm:"column:rating_2_count"`
	Rating3Count int `gorm:"column:rating_3_count"`
	Rating4Count int `gorm:"column:rating_4_count"`
	Rating5Count int `gorm:"column:rating_5_count"`
}

func (ServiceReviewStatsRow) TableName() string {
	return "service_review_stats"
}

// ServiceStats is the API shape of one service's review statistics.
type ServiceStats struct {
	ServiceID      uint    `json:"service_id"`
	ServiceName    string  `json:"service_name"`
	ServiceIcon    string  `json:"service_icon"`
	TotalReviews   int     `json:"total_reviews"`
	AverageRating  float64 `json:"average_rating"`
	Rating1Percent int     `json:"rating_1_percent"`
	Rating2Percent int     `json:"rating_2_percent"`
	Rating3Percent int     `json:"rating_3_percent"`
	Rating4Percent int     `json:"rating_4_percent"`
	Rating5Percent int     `json:"rating_5_percent"`
}
