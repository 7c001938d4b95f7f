package model

// UserModel mirrors the 'User' table. Booleans are stored as 0/1 integers.
// It is an exported type so the schema can be created from it.
type UserModel struct {
	UserID   int    `gorm:"column:UserID;primaryKey;autoIncrement"`
	Name     string `gorm:"column:Name;type:text;uniqueIndex:idx_user_name"`
	Email    string `gorm:"column:Email;type:text"`
	Enabled  int    `gorm:"column:Enabled;type:integer"`
	IsAdmin  int    `gorm:"column:IsAdmin;type:integer"`
	Salt     string `gorm:"column:Salt;type:text"`
	Password string `gorm:"column:Password;type:text"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "User"
}
