package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailLocalPartFromChineseName 把中文姓名转成拼音，
// 再加上随机数字作为邮箱的用户名部分
func GenerateEmailLocalPartFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	localPart := strings.Join(pinyinArray, "")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		localPart += string(digits[rand.Intn(len(digits))])
	}

	return localPart
}

func GenerateRandomAgent(password string, emailDomainName string) (*domain.Agent, error) {
	name := GenerateRandomChineseName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	agent := &domain.Agent{
		Name:         name,
		Email:        GenerateEmailLocalPartFromChineseName(name) + "@" + emailDomainName,
		PasswordHash: string(passwordHash),
		Role:         domain.RoleAgent,
	}

	return agent, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var companySuffixes = []string{"科技", "贸易", "实业", "网络", "传媒", "咨询", "物流", "制造"}
var companyPrefixes = []string{"恒远", "启明", "中汇", "蓝海", "天成", "华创", "瑞达", "新维", "宏图", "千里"}

func GenerateRandomCompanyName() string {
	return companyPrefixes[rand.Intn(len(companyPrefixes))] + companySuffixes[rand.Intn(len(companySuffixes))] + "有限公司"
}

// GenerateRandomLead 随机生成一条线索，ownerID 为 nil 时表示未分配
func GenerateRandomLead(ownerID *int64) *domain.Lead {
	name := GenerateRandomChineseName()
	company := GenerateRandomCompanyName()

	lead := &domain.Lead{
		Name:        name,
		Company:     company,
		Email:       GenerateEmailLocalPartFromChineseName(name) + "@example.com",
		Status:      domain.LeadStatuses[rand.Intn(len(domain.LeadStatuses))],
		Temperature: domain.LeadTemperatures[rand.Intn(len(domain.LeadTemperatures))],
		Value:       int64(rand.Intn(500)+1) * 10000,
		OwnerID:     ownerID,
	}

	phone := fmt.Sprintf("1%010d", rand.Int63n(10000000000))
	lead.Phone = &phone

	return lead
}
