package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/leea-dev/lead-manager/backend/internal/config"
	"github.com/leea-dev/lead-manager/backend/internal/repository"
	"github.com/leea-dev/lead-manager/backend/internal/seed"
	"github.com/leea-dev/lead-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机客户经理, 2: 插入随机线索, 3: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的客户经理数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				agent, err := utils.GenerateRandomAgent(cfg.Seed.Agent.Password, cfg.Email.AgentDomain)
				if err != nil {
					slog.Error("无法生成随机客户经理", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateAgent(agent); err != nil {
					slog.Error("无法插入客户经理", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入客户经理成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的线索数量")
		} else {
			// 先获取所有客户经理，把线索随机分配给他们
			agents, err := repo.GetAllAgents()
			if err != nil {
				slog.Error("无法获取所有客户经理", slog.String("error", err.Error()))
				return
			}
			if len(agents) == 0 {
				slog.Error("数据库中没有客户经理，请先插入客户经理")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				owner := agents[rand.Intn(len(agents))]

				lead := utils.GenerateRandomLead(&owner.ID)
				if err := repo.CreateLead(lead); err != nil {
					slog.Error("无法插入线索", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入线索成功", slog.Int("count", n-cnt))
		}
	case 3:
		seed.SeedDemoData(cfg, repo)
	default:
		slog.Error("指定的操作非法")
	}
}
