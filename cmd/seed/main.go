// 造测试数据：go run ./cmd/seed --posts 30 [--clear]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-support-board/internal/core/config"
	"go-support-board/internal/core/database"
	"go-support-board/internal/core/logger"
	"go-support-board/internal/domain"
	"go-support-board/internal/repo"
)

var tagNames = []string{
	"feature", "bug", "enhancement", "question", "discussion",
	"announcement", "update", "help", "documentation", "feedback",
}

var authors = []string{
	"Ami Asadi", "Mo Mayeri", "Jacob Kim", "Sarah Chen",
	"David Park", "Emily Lee", "Michael Jung", "Lisa Wang",
	"James Choi", "Anna Yoon",
}

var titleTemplates = []string{
	"Update Log #%d: Enhanced Features",
	"Bug Fix #%d: Performance Improvements",
	"New Feature #%d: User Experience Update",
	"Announcement #%d: Platform Changes",
	"Discussion #%d: Community Feedback",
	"Question #%d: How to use the new feature?",
	"Enhancement #%d: UI/UX Improvements",
	"Documentation #%d: API Reference Update",
	"Feedback #%d: Your thoughts needed",
	"Help #%d: Need assistance with setup",
}

var contentTemplates = []string{
	"We've tightened the experience across the board: clearer language, dependable emails, smarter moderation, and worked on performance.",
	"This update includes several bug fixes and performance improvements. We've addressed the issues reported by our community.",
	"Introducing a new feature that allows you to customize your dashboard. You can now drag and drop widgets and change themes.",
	"We're excited to announce major platform changes coming next month, including a redesigned navigation and faster loading times.",
	"We'd love to hear your thoughts on the recent changes. Please share your feedback in the comments below.",
	"I'm having trouble understanding how to use the new feature. Can someone explain the steps or point me to the documentation?",
	"Based on user feedback, we've made several UI/UX improvements. The interface is now more intuitive and easier to navigate.",
	"We've updated the API documentation with new endpoints and examples. Check out the updated reference guide for more details.",
	"We're collecting feedback on the proposed changes. Please let us know what you think about the new direction we're taking.",
	"I need help setting up the integration. Has anyone successfully configured this? Any tips would be appreciated.",
}

var commentTemplates = []string{
	"Thanks for the update! This is exactly what we needed.",
	"Great work! Looking forward to trying this out.",
	"I have a question about this. Can you elaborate on the implementation?",
	"This is fantastic! The team has done an amazing job.",
	"I noticed a small issue. Will report it in the bug tracker.",
	"Love the new changes! Keep up the great work.",
	"Could you provide more details on the timeline?",
	"This solved my problem. Thank you so much!",
	"Interesting approach. I'd suggest considering alternative solutions too.",
	"Well documented and easy to follow. Appreciate the effort!",
}

func main() {
	postCount := flag.Int("posts", 30, "生成的帖子数")
	clear := flag.Bool("clear", false, "先清空现有数据")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:   cfg.DB.Driver,
		DSN:      cfg.DB.DSN,
		LogLevel: "silent",
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Tag{}, &domain.Post{}, &domain.Comment{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	ctx := context.Background()

	if *clear {
		log.Info("clearing existing data")
		for _, stmt := range []string{
			"DELETE FROM comments", "DELETE FROM post_tags", "DELETE FROM posts", "DELETE FROM tags",
		} {
			if err := db.Exec(stmt).Error; err != nil {
				log.Fatal("clear failed", zap.Error(err))
			}
		}
	}

	tagRepo := repo.NewTagRepo(db)
	postRepo := repo.NewPostRepo(db)
	commentRepo := repo.NewCommentRepo(db)

	tags := make([]domain.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		t, err := tagRepo.GetOrCreate(ctx, name)
		if err != nil {
			log.Fatal("seed tag failed", zap.String("tag", name), zap.Error(err))
		}
		tags = append(tags, *t)
	}
	log.Info("tags ready", zap.Int("count", len(tags)))

	for i := 0; i < *postCount; i++ {
		p := &domain.Post{
			Title:      fmt.Sprintf(titleTemplates[rand.Intn(len(titleTemplates))], i+1),
			Content:    contentTemplates[rand.Intn(len(contentTemplates))],
			AuthorName: authors[rand.Intn(len(authors))],
			IsResolved: rand.Intn(4) == 0, // 25%
		}
		if err := postRepo.Create(ctx, p); err != nil {
			log.Fatal("seed post failed", zap.Error(err))
		}

		// 1~3 个随机标签
		picked := rand.Perm(len(tags))[:1+rand.Intn(3)]
		chosen := make([]domain.Tag, 0, len(picked))
		for _, idx := range picked {
			chosen = append(chosen, tags[idx])
		}
		if err := postRepo.ReplaceTags(ctx, p, chosen); err != nil {
			log.Fatal("seed tags failed", zap.Error(err))
		}

		// 0~5 条评论
		for n := rand.Intn(6); n > 0; n-- {
			cm := &domain.Comment{
				PostID:     p.ID,
				Content:    commentTemplates[rand.Intn(len(commentTemplates))],
				AuthorName: authors[rand.Intn(len(authors))],
			}
			if err := commentRepo.Create(ctx, cm); err != nil {
				log.Fatal("seed comment failed", zap.Error(err))
			}
		}
	}

	log.Info("seed done", zap.Int("posts", *postCount))
}
