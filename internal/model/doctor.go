package model

// DefaultFixedSlots are the bookable times a new doctor starts with.
var DefaultFixedSlots = []string{"10:00", "12:00", "14:00", "16:00"}

// BookedSlot is one reserved (date, time) pair on a doctor.
type BookedSlot struct {
	Date string `json:"date" bson:"date" db:"slot_date"`
	Time string `json:"time" bson:"time" db:"slot_time"`
}

// WorkingDay is informational only; booking is governed by FixedSlots.
type WorkingDay struct {
	Open   string `json:"open,omitempty" bson:"open,omitempty"`
	Close  string `json:"close,omitempty" bson:"close,omitempty"`
	Closed bool   `json:"closed" bson:"closed"`
}

type Doctor struct {
	Base           `bson:",inline"`
	Name           string                `json:"name" bson:"name"`
	Email          string                `json:"email" bson:"email"`
	PasswordHash   string                `json:"-" bson:"passwordHash"`
	Phone          string                `json:"phone,omitempty" bson:"phone,omitempty"`
	Specialization string                `json:"specialization" bson:"specialization"`
	Degree         string                `json:"degree,omitempty" bson:"degree,omitempty"`
	Experience     int                   `json:"experience" bson:"experience"`
	Fees           float64               `json:"fees" bson:"fees"`
	About          string                `json:"about,omitempty" bson:"about,omitempty"`
	Address        string                `json:"address,omitempty" bson:"address,omitempty"`
	Image          string                `json:"image,omitempty" bson:"image,omitempty"`
	FixedSlots     []string              `json:"fixedSlots" bson:"fixedSlots"`
	BookedSlots    []BookedSlot          `json:"bookedSlots" bson:"bookedSlots"`
	IsActive       bool                  `json:"isActive" bson:"isActive"`
	Available      bool                  `json:"available" bson:"available"`
	WorkingHours   map[string]WorkingDay `json:"workingHours,omitempty" bson:"workingHours,omitempty"`
}

// OffersSlot reports whether t is one of the doctor's fixed slots.
func (d *Doctor) OffersSlot(t string) bool {
	for _, s := range d.FixedSlots {
		if s == t {
			return true
		}
	}
	return false
}

// BookedTimes returns the booked times on date, in booking order.
func (d *Doctor) BookedTimes(date string) []string {
	var times []string
	for _, b := range d.BookedSlots {
		if b.Date == date {
			times = append(times, b.Time)
		}
	}
	return times
}

type RegisterDoctorRequest struct {
	Name           string   `json:"name" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=8"`
	Phone          string   `json:"phone"`
	Specialization string   `json:"specialization" binding:"required"`
	Degree         string   `json:"degree"`
	Experience     int      `json:"experience" binding:"min=0"`
	Fees           float64  `json:"fees" binding:"min=0"`
	About          string   `json:"about"`
	Address        string   `json:"address"`
	FixedSlots     []string `json:"fixedSlots" binding:"omitempty,dive,slottime"`
}

type UpdateDoctorRequest struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Specialization *string  `json:"specialization"`
	Degree         *string  `json:"degree"`
	Experience     *int     `json:"experience" binding:"omitempty,min=0"`
	Fees           *float64 `json:"fees" binding:"omitempty,min=0"`
	About          *string  `json:"about"`
	Address        *string  `json:"address"`
}

type UpdateScheduleRequest struct {
	FixedSlots   []string              `json:"fixedSlots" binding:"omitempty,min=1,dive,slottime"`
	WorkingHours map[string]WorkingDay `json:"workingHours"`
}

type DoctorFilter struct {
	Specialization string
	OnlyActive     bool
}

type DoctorDashboard struct {
	Earnings     float64        `json:"earnings"`
	Appointments int            `json:"appointments"`
	Patients     int            `json:"patients"`
	Pending      int            `json:"pending"`
	Completed    int            `json:"completed"`
	Cancelled    int            `json:"cancelled"`
	Latest       []*Appointment `json:"latestAppointments"`
}

type AdminDashboard struct {
	Doctors      int            `json:"doctors"`
	Patients     int            `json:"patients"`
	Appointments int            `json:"appointments"`
	Latest       []*Appointment `json:"latestAppointments"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
