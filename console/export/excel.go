package export

import (
	"fmt"
	"strings"

	"campusdata/console/schema"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Nutzer"

var spreadsheetHeader = []interface{}{
	"Aktiv", "Globale Rolle", "Lokale Rollen", "Kategorie", "Login", "Passwort",
	"Sprache", "Anrede", "Vorname", "Nachname", "Titel", "Geburtstag", "E-Mail",
	"Institution", "Abteilung", "Straße", "Stadt", "PLZ", "Land (ISO)", "Land",
	"Telefon", "Telefon (dienstlich)", "Mobil", "Fax", "Hobby", "Kommentar",
	"Matrikelnummer", "UDF1", "UDF2", "UDF3", "UDF4", "UDF5",
	"Unbegrenzter Zugriff", "Zugriff von", "Zugriff bis", "Skin", "Auth-Modus",
	"Externes Konto",
}

// localRoleNames resolves a user's role ids to "object / role" labels.
// Dangling ids are skipped.
func localRoleNames(roleIds []string, roles map[string]schema.ObjectRoleDefinition) string {
	names := make([]string, 0, len(roleIds))
	for _, id := range roleIds {
		if role, ok := roles[id]; ok {
			names = append(names, fmt.Sprintf("%v / %v", role.ObjectName, role.RoleName))
		}
	}
	return strings.Join(names, ", ")
}

func boolLabel(b bool) string {
	if b {
		return "Ja"
	}
	return "Nein"
}

// Spreadsheet renders all users into an xlsx workbook with a single sheet,
// one row per user.
func Spreadsheet(users []schema.PlatformUser, roleDefs []schema.ObjectRoleDefinition) ([]byte, error) {
	roles := make(map[string]schema.ObjectRoleDefinition, len(roleDefs))
	for _, role := range roleDefs {
		roles[role.Id] = role
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("error creating worksheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &spreadsheetHeader); err != nil {
		return nil, fmt.Errorf("error writing header row: %w", err)
	}

	for i, user := range users {
		row := []interface{}{
			boolLabel(user.Active),
			string(user.GlobalRole),
			localRoleNames(user.LocalRoleIds, roles),
			user.Category,
			user.Login,
			user.Password,
			user.Language,
			user.Salutation,
			user.Firstname,
			user.Lastname,
			user.Title,
			user.Birthday,
			user.Email,
			user.Institution,
			user.Department,
			user.Street,
			user.City,
			user.PostalCode,
			user.CountryIso,
			user.CountryPlain,
			user.Phone,
			user.PhoneOffice,
			user.Mobile,
			user.Fax,
			user.Hobby,
			user.Comment,
			user.Matriculation,
			user.Udf1,
			user.Udf2,
			user.Udf3,
			user.Udf4,
			user.Udf5,
			boolLabel(user.UnlimitedAccess),
			user.LimitedAccessFrom,
			user.LimitedAccessUntil,
			user.SkinId,
			string(user.AuthMode),
			user.ExternalAccount,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("error computing cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing user row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
