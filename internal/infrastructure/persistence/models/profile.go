package models

// ProfileModel is the GORM model for the profiles table
type ProfileModel struct {
	ID       uint64 `gorm:"column:profileid;primaryKey;autoIncrement"`
	Idx      string `gorm:"type:varchar(96);not null;index:idx_profiles_idx_idx2,priority:1"`
	Idx2     uint64 `gorm:"not null;default:0;index:idx_profiles_idx_idx2,priority:2"`
	ValueStr string `gorm:"column:value_str;type:text;not null;default:''"`
}

// TableName returns the table name for ProfileModel
func (ProfileModel) TableName() string {
	return "profiles"
}
