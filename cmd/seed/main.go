package main

import (
	"flag"
	"log"
	"os"

	"github.com/tulendi/cafe-directory/internal/config"
	"github.com/tulendi/cafe-directory/internal/database"
	"github.com/tulendi/cafe-directory/internal/models"
	"github.com/tulendi/cafe-directory/internal/utils"
)

// Out-of-band admin provisioning: creates the initial admin account
// without going through the login promotion side channel.
func main() {
	withCafes := flag.Bool("with-cafes", false, "also insert a small sample directory")
	flag.Parse()

	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	var admin models.User
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error == nil {
		log.Println("Admin user already exists:", admin.Username)
		log.Println("   Email:", admin.Email)
	} else {
		passwordHash, err := utils.HashPassword(adminPassword)
		if err != nil {
			log.Fatal("Failed to hash password:", err)
		}

		admin = models.User{
			Username:     adminUsername,
			Email:        adminEmail,
			PasswordHash: passwordHash,
			Role:         models.RoleAdmin,
		}

		if err := database.DB.Create(&admin).Error; err != nil {
			log.Fatal("Failed to create admin:", err)
		}

		log.Println("Admin user created successfully!")
		log.Println("   Username:", admin.Username)
		log.Println("   Email:", admin.Email)
	}

	if *withCafes {
		seedCafes(admin.ID)
	}
}

func seedCafes(authorID uint) {
	samples := []models.Cafe{
		{
			Name:         "Science Gallery London",
			MapURL:       "https://g.page/scigallerylon",
			ImgURL:       "https://atlondonbridge.com/wp-content/uploads/2019/02/Pano_9758_9761-Edit-190918_LTS_Science_Gallery-Medium-Crop-V2.jpg",
			Location:     "London Bridge",
			Seats:        "50+",
			HasToilet:    true,
			HasWifi:      true,
			HasSockets:   true,
			CanTakeCalls: true,
			CoffeePrice:  "£2.40",
		},
		{
			Name:         "Social - Copenhagen",
			MapURL:       "https://goo.gl/maps/YYjPKBB1zhQRFKHGA",
			ImgURL:       "https://images.squarespace-cdn.com/content/v1/5d3de1c9b5a0810001291143/1564560425255-DGGJ3MRAS6ZIUBH70R0G/social.jpg",
			Location:     "Copenhagen",
			Seats:        "20-30",
			HasToilet:    true,
			HasWifi:      true,
			HasSockets:   true,
			CanTakeCalls: false,
			CoffeePrice:  "27kr",
		},
		{
			Name:         "One & All Cafe Peckham",
			MapURL:       "https://g.page/one-all-cafe",
			ImgURL:       "https://lh3.googleusercontent.com/p/AF1QipMznPVkTzLnqAvvgBSQvO41G3jw0aHBs4EyO2HQ=s0",
			Location:     "Peckham",
			Seats:        "20-30",
			HasToilet:    true,
			HasWifi:      true,
			HasSockets:   false,
			CanTakeCalls: false,
			CoffeePrice:  "£2.75",
		},
	}

	for i := range samples {
		samples[i].AuthorID = &authorID

		var existing models.Cafe
		if err := database.DB.Where("name = ?", samples[i].Name).First(&existing).Error; err == nil {
			log.Println("Cafe already exists:", samples[i].Name)
			continue
		}

		if err := database.DB.Create(&samples[i]).Error; err != nil {
			log.Fatal("Failed to seed cafe:", err)
		}
		log.Println("Seeded cafe:", samples[i].Name)
	}
}
