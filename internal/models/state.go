package models

// DatabaseState is the full snapshot returned after every mutation so callers can replace
// their cache wholesale.
type DatabaseState struct {
	Clinics      []Clinic      `json:"clinics"`
	Users        []User        `json:"users"`
	Wallets      []Wallet      `json:"wallets"`
	Transactions []Transaction `json:"transactions"`
	FamilyGroups []FamilyGroup `json:"familyGroups"`
	CarePlans    []CarePlan    `json:"carePlans"`
	Appointments []Appointment `json:"appointments"`
}

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Clinic{},
		&User{},
		&Wallet{},
		&Transaction{},
		&FamilyGroup{},
		&CarePlan{},
		&Appointment{},
		&SystemLog{},
	}
}
