package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"Campus_Portal/internal/config"
	"Campus_Portal/internal/logger"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"
	"Campus_Portal/internal/service"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = `Usage:
  admin set-role -email <email> -role <student|faculty>
  admin add-faculty -email <email> -name <name> [-department d] [-experience e] [-phone p] [-dob yyyy-mm-dd] [-cabin c]

Every command accepts -config <path>; CONFIG_PATH is used when omitted.`

// 角色和教师通讯录只能通过这个命令维护
func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "set-role":
		err = setRole(os.Args[2:])
	case "add-faculty":
		err = addFaculty(os.Args[2:])
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		logrus.WithError(err).Fatal(os.Args[1])
	}
}

func open(path string) (*sqlstore.UserRepository, *sqlstore.FacultyRepository, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Env, cfg.Log.Level)
	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return &sqlstore.UserRepository{DB: db}, &sqlstore.FacultyRepository{DB: db}, nil
}

func setRole(args []string) error {
	fs := flag.NewFlagSet("set-role", flag.ExitOnError)
	cfgPath := fs.String("config", os.Getenv("CONFIG_PATH"), "config file")
	email := fs.String("email", "", "account email")
	role := fs.String("role", "", "student or faculty")
	_ = fs.Parse(args)
	if *email == "" || *role == "" {
		fs.Usage()
		os.Exit(2)
	}

	users, faculty, err := open(*cfgPath)
	if err != nil {
		return err
	}
	// 管理命令不需要会话、验证码和 token
	svc := service.NewUserService(users, nil, faculty, nil, nil, "")
	if err = svc.SetRole(context.Background(), *email, *role); err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", *email, *role)
	return nil
}

func addFaculty(args []string) error {
	fs := flag.NewFlagSet("add-faculty", flag.ExitOnError)
	cfgPath := fs.String("config", os.Getenv("CONFIG_PATH"), "config file")
	email := fs.String("email", "", "faculty account email")
	var p model.FacultyProfile
	fs.StringVar(&p.Name, "name", "", "display name")
	fs.StringVar(&p.Department, "department", "", "department")
	fs.StringVar(&p.Experience, "experience", "", "experience")
	fs.StringVar(&p.PhoneNo, "phone", "", "phone number")
	fs.StringVar(&p.DateOfBirth, "dob", "", "date of birth, yyyy-mm-dd")
	fs.StringVar(&p.CabinNo, "cabin", "", "cabin number")
	_ = fs.Parse(args)
	if *email == "" || p.Name == "" {
		fs.Usage()
		os.Exit(2)
	}

	users, faculty, err := open(*cfgPath)
	if err != nil {
		return err
	}
	created, err := service.NewDirectoryService(faculty, users).AddFaculty(context.Background(), *email, p)
	if err != nil {
		return err
	}
	fmt.Printf("faculty profile %s created for %s\n", created.ID, *email)
	return nil
}
