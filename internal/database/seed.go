package database

import (
	"strings"

	"whatsbot-gateway/internal/engine"
	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var seedTemplates = []models.Template{
	{
		Name:    "Initial Contact",
		Content: "Assalam o Alikum, *Mr./Mrs. {name}*,\n\nHum *{businessName}* ki trf se aap se rabta kr rhy hain.\n\nAap ne hmari website pr *{product}* ka order kia tha jis ka order number *{orderNumber}* hai.\n\nAap se request hai ky Kindly order confirm kr den ta ky hum apka order jald az jald process kr den.\n\nBht Shukria!!",
	},
	{
		Name:    "Follow-up",
		Content: "Assalam o Alikum, *Mr./Mrs. {name}*,\n\nHum *{businessName}* ki trf se dobara aap se rabta kr rhy hain.\n\nKya aap ne hmara pichla message dekha tha? Aap ne *{product}* ka order kia tha.\n\nHum iss order ko confirm karna chahte hain. Kya aap order confirm krna chahte hain?\n\nBht Shukria!!",
	},
	{
		Name:    "Confirmation Thank You",
		Content: "Shukria *Mr./Mrs. {name}*,\n\nAap ka order confirm ho gaya hai. Hum isse jald hi process kr den ge.\n\n3-4 din mein aap ko delivery ho jaye gi.\n\nBht Shukria!!",
	},
}

var seedFAQs = []models.FAQ{
	{
		Question: "Delivery kitne din mein hogi?",
		Answer:   "Delivery 3-4 din mein ho jaye gi.",
		Keywords: "delivery,din,time,kab,jaldi,pahunchay ga,pahunche,kitna",
	},
	{
		Question: "Aap kahan se hain?",
		Answer:   "Hum Lahore, Pakistan mein hain.",
		Keywords: "kahan,location,address,lahore,pakistan,daftar,office",
	},
	{
		Question: "Main aur products kaise dekh sakta hoon?",
		Answer:   "Aap hmari website {websiteUrl} par visit kr k sare products dekh sakte hain.",
		Keywords: "products,items,aur,dusre,website,catalog,dekh",
	},
	{
		Question: "Main dobara order kaise karu?",
		Answer:   "Dobara order karne k liye hmari website {websiteUrl} par visit karen.",
		Keywords: "dobara,again,order,kaise,phir,dubara,new",
	},
	{
		Question: "Cash on delivery available hai?",
		Answer:   "Ji han, cash on delivery available hai.",
		Keywords: "cash,cod,delivery,payment,paisa,rupay,method",
	},
}

// SeedDefaults inserts the built-in templates, FAQs and settings when their
// tables are empty. Existing data is never touched.
func SeedDefaults(db *gorm.DB) error {
	var count int64

	db.Model(&models.Template{}).Count(&count)
	if count == 0 {
		for _, t := range seedTemplates {
			t.ID = uuid.NewString()
			t.Variables = strings.Join(engine.ExtractVariables(t.Content), ",")
			if err := db.Create(&t).Error; err != nil {
				return err
			}
		}
		logger.Info("Seeded default message templates")
	}

	db.Model(&models.FAQ{}).Count(&count)
	if count == 0 {
		for _, f := range seedFAQs {
			f.ID = uuid.NewString()
			if err := db.Create(&f).Error; err != nil {
				return err
			}
		}
		logger.Info("Seeded default FAQs")
	}

	db.Model(&models.Settings{}).Count(&count)
	if count == 0 {
		settings := models.Settings{
			BusinessName:     "Mihraaj Ventures",
			WebsiteURL:       "https://mihraajventures.com",
			AutoRun:          false,
			HeadlessMode:     false,
			MessageInterval:  5,
			FollowUpInterval: 120,
			MaxFollowUps:     3,
		}
		if err := db.Create(&settings).Error; err != nil {
			return err
		}
		logger.Info("Seeded default settings")
	}

	return nil
}
