package main

import (
	"context"
	"log"
	"os"
	"time"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/database"
	"ai-studyroom-be/pkg/topiccrypt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Seeds a demo room with two topics so the websocket flow can be exercised
// locally without the external collaboration service.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	passwordHash, err := topiccrypt.HashRoomPassword("studyroom")
	if err != nil {
		log.Fatal("Error: failed to hash room password:", err)
	}

	memberA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	memberB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	room := entity.Room{
		Id:           uuid.New(),
		Name:         "Demo Study Room",
		PasswordHash: passwordHash,
		MemberIds:    []uuid.UUID{memberA, memberB},
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uow.RoomRepository().Create(ctx, &room); err != nil {
		log.Fatal("Error: failed to create room:", err)
	}

	for _, title := range []string{"General", "Exam Prep"} {
		keyMaterial, err := topiccrypt.GenerateKeyMaterial()
		if err != nil {
			log.Fatal("Error: failed to generate topic key:", err)
		}
		topic := entity.Topic{
			Id:            uuid.New(),
			RoomId:        room.Id,
			Title:         title,
			EncryptionKey: keyMaterial,
			IsActive:      true,
			CreatedAt:     time.Now().UTC(),
		}
		if err := uow.TopicRepository().Create(ctx, &topic); err != nil {
			log.Fatal("Error: failed to create topic:", err)
		}
		log.Printf("Seeded topic %q (%s)", title, topic.Id)
	}

	log.Printf("Seeded room %q (%s) with members %s, %s", room.Name, room.Id, memberA, memberB)
}
