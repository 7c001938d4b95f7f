// Package model contains the GORM persistence models of the credential store.
package model

// SystemModel mirrors the 'System' settings table. (Category, Setting) is unique by convention only.
type SystemModel struct {
	Category string `gorm:"column:Category;type:text"`
	Setting  string `gorm:"column:Setting;type:text"`
	Value    string `gorm:"column:Value;type:text"`
}

// TableName explicitly sets the table name for GORM.
func (SystemModel) TableName() string {
	return "System"
}

// All lists the models in schema creation order.
func All() []any {
	return []any{&SystemModel{}, &UserModel{}, &AuditModel{}}
}
