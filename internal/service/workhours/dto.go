package workhours

type Status string

const (
	StatusAny      Status = ""
	StatusNormal   Status = "normal"
	StatusOvertime Status = "overtime"
)

const Weeks = 5

type Employee struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Division         string         `json:"department"`
	DepartmentName   string         `json:"departmentName"`
	DeptCode         string         `json:"deptCode"`
	Hours            [Weeks]float64 `json:"hours"`
	CurrentUsedHours float64        `json:"currentUsedHours"`
	HoursLeft        float64        `json:"hoursLeft"`
}

type Filter struct {
	Search     string
	Status     Status
	Week       int
	Factory    string
	Division   string
	Department string
	Page       int
	Limit      int
}

type Summary struct {
	Total    int `json:"totalEmployees"`
	Normal   int `json:"normalEmployees"`
	Overtime int `json:"overtimeEmployees"`
}

type Option struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Options struct {
	Factories   []Option `json:"factories"`
	Divisions   []Option `json:"divisions"`
	Departments []Option `json:"departments"`
}

type Result struct {
	Employees []Employee `json:"employees"`
	Summary   Summary    `json:"summary"`
	Options   Options    `json:"options"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
	Total     int        `json:"total"`
	Pages     int        `json:"pages"`
	Week      int        `json:"week"`
	HourLimit float64    `json:"hourLimit"`
}
