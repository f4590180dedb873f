package manpower

import (
	"github.com/Azure/go-autorest/autorest/date"
)

type ListFilter struct {
	From    *date.Date
	To      *date.Date
	Factory *string
}

type Summary struct {
	TotalScanned    int `json:"totalScanned"`
	TotalNotScanned int `json:"totalNotScanned"`
}

type BarChartItem struct {
	DeptCode        string `json:"deptcode"`
	Department      string `json:"department"`
	ScannedCount    int    `json:"scannedCount"`
	NotScannedCount int    `json:"notScannedCount"`
}

type Detail struct {
	WorkDate            string  `json:"workdate"`
	PersonCode          string  `json:"person_code"`
	HTCPersonCode       string  `json:"htcpersoncode,omitempty"`
	DeptCode            string  `json:"deptcode"`
	DeptName            string  `json:"deptname"`
	FullName            string  `json:"full_name"`
	DepartmentFullPaths string  `json:"department_full_paths"`
	FirstScanTime       *string `json:"firstscantime"`
	LastScanTime        *string `json:"lastscantime"`
	ShiftName           string  `json:"shiftname"`
	PersonType          string  `json:"PersonType"`
	OverIn              string  `json:"over_in"`
}

type DetailFilter struct {
	DeptCodes []string
	WorkDates []string
}

// DetailGroup splits the people of one department on one date by whether
// they scanned in.
type DetailGroup struct {
	WorkDate   string   `json:"workdate"`
	DeptCode   string   `json:"deptcode"`
	Scanned    []Detail `json:"scanned"`
	NotScanned []Detail `json:"notScanned"`
}

type DetailResponse struct {
	DeptName   string              `json:"deptname"`
	DataByDate map[string][]Detail `json:"dataByDate"`
	Groups     []DetailGroup       `json:"groups"`
	Detail     []Detail            `json:"detail"`
}

type PersonFilter struct {
	PersonCode string
	From       date.Date
	To         date.Date
}

type ScanFilter struct {
	Date     *date.Date
	DeptCode *string
}

type Employee struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	WeComID string `json:"wecom_id"`
	IsHOD   bool   `json:"is_hod"`
}

type Department struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Employees []Employee `json:"employees"`
}

// DepartmentRow is one row of the detail view used to build the department list.
type DepartmentRow struct {
	DeptCode    string
	DeptName    string
	FullName    string
	PersonCode  string
	WeComUserID string
	PersonGroup string
}
