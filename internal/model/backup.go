package model

import (
	"time"
)

type BackupFile struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateBackupRequest struct {
	Filename string `json:"filename"`
}
