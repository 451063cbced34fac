package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"barkeep/internal/categorize"
	"barkeep/internal/config"
	"barkeep/internal/db"
	"barkeep/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

func main() {
	csvPath := "product master list.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	owner, err := resolveImportOwner(database)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			product := buildProduct(record)
			if product.Code == "" {
				return errors.New("missing product code")
			}
			if product.Description == "" {
				return errors.New("missing description")
			}
			product.Organisation = owner.Organisation
			product.CreatedBy = owner.ID
			product.LastEditedBy = owner.ID

			var existing models.Product
			err := tx.Where("code = ?", product.Code).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(&product).Error
			}
			if err != nil {
				return fmt.Errorf("find product by code %q: %w", product.Code, err)
			}

			updates := map[string]any{
				"unique_item_number":    product.UniqueItemNumber,
				"description":           product.Description,
				"supplier":              product.Supplier,
				"supplier_product_code": product.SupplierProductCode,
				"category":              product.Category,
				"sub_category":          product.SubCategory,
				"item_level":            product.ItemLevel,
				"selling_unit":          product.SellingUnit,
				"cost_per_unit":         product.CostPerUnit,
				"ml_in_bottle":          product.MlInBottle,
				"abv":                   product.ABV,
				"purchase_type":         product.PurchaseType,
				"bottles_per_case":      product.BottlesPerCase,
				"last_edited_by":        owner.ID,
			}
			return tx.Model(&existing).Updates(updates).Error
		}); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record["Code"], err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d products from %s\n", imported, filepath.Base(csvPath))
	return nil
}

func resolveImportOwner(database *gorm.DB) (models.User, error) {
	if database == nil {
		return models.User{}, fmt.Errorf("database handle is nil")
	}

	ctx := context.Background()
	email := strings.TrimSpace(os.Getenv("BARKEEP_IMPORT_OWNER_EMAIL"))
	if email != "" {
		var user models.User
		if err := database.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("find owner by email %q: %w", strings.ToLower(email), err)
		}
		return user, nil
	}

	var user models.User
	if err := database.WithContext(ctx).Order("id asc").First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("find default owner: %w", err)
	}
	return user, nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildProduct(row map[string]string) models.Product {
	description := normalizeText(row["Description"])
	category := normalizeValue(row["Category"])
	subCategory := normalizeValue(row["Sub Category"])
	if category == "" && subCategory == "" {
		category, subCategory = categorize.Categorize(description)
	}

	bottlesPerCase := int(parseFirstNumber(row["Bottles Per Case"]))
	if bottlesPerCase <= 0 {
		bottlesPerCase = 1
	}

	return models.Product{
		Code:                normalizeValue(row["Code"]),
		UniqueItemNumber:    normalizeValue(row["Unique Item Number"]),
		Description:         description,
		Supplier:            normalizeValue(row["Supplier"]),
		SupplierProductCode: normalizeValue(row["Supplier Product Code"]),
		Category:            category,
		SubCategory:         subCategory,
		ItemLevel:           defaultValue(row["Item Level"], "Primary"),
		SellingUnit:         defaultValue(row["Selling Unit"], models.UnitML),
		CostPerUnit:         parseFirstNumber(row["Cost Per Unit"]),
		MlInBottle:          parseFirstNumber(row["Ml In Bottle"]),
		ABV:                 parseFirstNumber(row["ABV"]),
		PurchaseType:        defaultValue(row["Purchase Type"], models.PurchaseEach),
		BottlesPerCase:      bottlesPerCase,
	}
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func defaultValue(value, fallback string) string {
	value = normalizeValue(value)
	if value == "" {
		return fallback
	}
	return value
}

func parseFirstNumber(value string) float64 {
	value = normalizeValue(value)
	if value == "" {
		return 0
	}

	match := numberPattern.FindString(strings.ReplaceAll(value, ",", ""))
	if match == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return parsed
}
