package model

import "time"

// Post 博客文章（Cover 为空表示尚未设置封面）
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Summary   string    `json:"summary" gorm:"type:text"`
	Content   string    `json:"content" gorm:"type:text"`
	Cover     string    `json:"cover" gorm:"type:varchar(255)"`
	AuthorID  string    `json:"author_id" gorm:"type:varchar(36);index:idx_post_author;not null"`
	// author 创建后不可变，鉴权在 service 层完成
	Author    User      `json:"author" gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }
