package model

// AuditModel mirrors the append-only 'Audit' table.
type AuditModel struct {
	UserID   int    `gorm:"column:UserID;type:integer"`
	DateTime string `gorm:"column:DateTime;type:text"`
	Action   string `gorm:"column:Action;type:text"`
	Details  string `gorm:"column:Details;type:text"`
}

// TableName explicitly sets the table name for GORM.
func (AuditModel) TableName() string {
	return "Audit"
}
