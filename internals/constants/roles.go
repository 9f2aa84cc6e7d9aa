package constants

import "fmt"

const (
	RoleAdmin          = "admin"
	RoleTeacher        = "teacher"
	RoleStudent        = "student"
	RoleSalesExecutive = "sales_executive"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent, RoleSalesExecutive}

	// boleh kelola konten & jawab doubt
	StaffRoles = []string{RoleTeacher, RoleAdmin}

	SalesRoles = []string{RoleSalesExecutive, RoleAdmin}
)

const (
	ErrOnlyStaffCanAccess  = "❌ Only teachers or admins can access %s."
	ErrOnlyAdminsCanAccess = "❌ Only admins can access %s."
	ErrOnlySalesCanAccess  = "❌ Only sales executives can access %s."
)

func RoleErrorStaff(feature string) string { return fmt.Sprintf(ErrOnlyStaffCanAccess, feature) }
func RoleErrorAdmin(feature string) string { return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature) }
func RoleErrorSales(feature string) string { return fmt.Sprintf(ErrOnlySalesCanAccess, feature) }

func IsValidRole(r string) bool {
	for _, x := range AllRoles {
		if x == r {
			return true
		}
	}
	return false
}

func IsStaff(r string) bool { return r == RoleTeacher || r == RoleAdmin }
