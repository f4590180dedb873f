package hrbackend

type LineUser struct {
	ID           int     `json:"id"`
	UserID       string  `json:"userId"`
	EmployeeCode string  `json:"employeeCode"`
	DisplayName  string  `json:"displayName"`
	LastMessage  string  `json:"lastMessage"`
	UpdatedAt    string  `json:"updatedAt"`
	WorkdayID    string  `json:"workdayId"`
	DeptList     string  `json:"deptlist"`
	Language     string  `json:"language"`
	CreateAt     string  `json:"createAt"`
	WeComID      *string `json:"weComId"`
}

type LineUserRequest struct {
	ID           *int    `json:"id" form:"id"`
	UserID       string  `json:"userId" form:"userId"`
	EmployeeCode *string `json:"employeeCode" form:"employeeCode"`
	DisplayName  string  `json:"displayName" form:"displayName"`
	LastMessage  string  `json:"lastMessage" form:"lastMessage"`
	WorkdayID    string  `json:"workdayId" form:"workdayId"`
	DeptList     string  `json:"deptlist" form:"deptlist"`
	Language     string  `json:"language" form:"language"`
	WeComID      *string `json:"weComId" form:"weComId"`
}

type EmployeeActive struct {
	WorkdayID string `json:"workdayId"`
	EmpCode   string `json:"empCode"`
	EmpName   string `json:"empName"`
	DeptCode  string `json:"deptCode"`
	DeptName  string `json:"deptName"`
}

// EmployeeHours holds the hours an employee worked in each week of the month.
type EmployeeHours struct {
	Div                string  `json:"div"`
	Sec                string  `json:"sec"`
	EmpID              string  `json:"empid"`
	W1                 float64 `json:"w1"`
	W2                 float64 `json:"w2"`
	W3                 float64 `json:"w3"`
	W4                 float64 `json:"w4"`
	W5                 float64 `json:"w5"`
	CurrentDateUseHour float64 `json:"current_date_use_hour"`
	HoursLeft          float64 `json:"hours_left"`
}

func (h EmployeeHours) Weeks() [5]float64 {
	return [5]float64{h.W1, h.W2, h.W3, h.W4, h.W5}
}

// ScanSummary is one employee's first and last scan of a work day. ScanIn and
// ScanOut are HH:MM:SS or ISO 8601 timestamps.
type ScanSummary struct {
	WorkdayID string  `json:"workdayId"`
	DateWork  string  `json:"dateWork"`
	ScanIn    *string `json:"scanIn"`
	ScanOut   *string `json:"scanOut"`
}
