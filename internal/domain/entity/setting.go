package entity

// Well-known system settings.
const (
	SettingCategorySystem = "System"
	SettingVersion        = "Version"
	SettingAdminPipeName  = "AdminPipeName"

	// CurrentStoreVersion is the only schema version this build can open.
	CurrentStoreVersion = "1.0"

	// AdminPipeNamePrefix precedes the random part of a generated admin channel name.
	AdminPipeNamePrefix = "PeerBackupServiceAdminPipe-"
)

// SystemSetting is a (Category, Setting) keyed configuration value persisted in the store.
type SystemSetting struct {
	Category string
	Setting  string
	Value    string
}
