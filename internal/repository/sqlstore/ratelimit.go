package sqlstore

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// pgRateLimitState 限流触发器在 postgres 中抛出的 SQLSTATE
const pgRateLimitState = "RL429"

// mysqlSignalErrno 触发器 SIGNAL 时附带的错误号
const mysqlSignalErrno = 1644

type Limit struct {
	Window time.Duration
	Max    int
}

type Limits struct {
	Complaint Limit
	Listing   Limit
	LostFound Limit
}

// rule 每张表一个 BEFORE INSERT 触发器：窗口内同一作者的行数达到上限即拒绝
type rule struct {
	Table   string
	Owner   string
	Limit   Limit
	Message string
}

func (l Limits) rules() []rule {
	return []rule{
		{Table: "complaint_box", Owner: "author_id", Limit: l.Complaint, Message: complaintLimitMessage(l.Complaint)},
		{Table: "marketplace", Owner: "owner_id", Limit: l.Listing, Message: listingLimitMessage(l.Listing)},
		{Table: "lost_found", Owner: "reporter_id", Limit: l.LostFound, Message: lostFoundLimitMessage(l.LostFound)},
	}
}

func complaintLimitMessage(l Limit) string {
	noun := "complaint"
	if l.Max != 1 {
		noun += "s"
	}
	if l.Window == 7*24*time.Hour {
		return fmt.Sprintf("Limit reached! You can only post %d %s per week.", l.Max, noun)
	}
	return fmt.Sprintf("Limit reached! You can only post %d %s every %s.", l.Max, noun, describeWindow(l.Window))
}

func listingLimitMessage(l Limit) string {
	noun := "item"
	if l.Max != 1 {
		noun += "s"
	}
	return fmt.Sprintf("Limit reached! You can only list %d %s every %s.", l.Max, noun, describeWindow(l.Window))
}

func lostFoundLimitMessage(l Limit) string {
	prefix := "Limit reached!"
	if l.Window == 24*time.Hour {
		prefix = "Daily limit reached!"
	}
	noun := "item"
	if l.Max != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%s You can only post %d %s every %s.", prefix, l.Max, noun, describeWindow(l.Window))
}

func describeWindow(d time.Duration) string {
	day := 24 * time.Hour
	if d > day && d%day == 0 {
		return fmt.Sprintf("%d days", d/day)
	}
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", d/time.Hour)
	}
	return fmt.Sprintf("%d minutes", d/time.Minute)
}

// InstallRateLimits 先删后建，保证配置变更后重新迁移即可生效
func InstallRateLimits(db *gorm.DB, limits Limits) error {
	dialect := db.Dialector.Name()
	for _, r := range limits.rules() {
		var stmts []string
		switch dialect {
		case DriverPostgres:
			stmts = postgresTrigger(r)
		case DriverMySQL:
			stmts = mysqlTrigger(r)
		case DriverSQLite:
			stmts = sqliteTrigger(r)
		default:
			return fmt.Errorf("rate limit triggers not supported for %s", dialect)
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("install rate limit on %s: %w", r.Table, err)
			}
		}
	}
	return nil
}

func triggerName(r rule) string { return "trg_" + r.Table + "_rate_limit" }
func functionName(r rule) string { return r.Table + "_rate_limit" }
func quote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }
func windowSeconds(r rule) int64 { return int64(r.Limit.Window / time.Second) }

func postgresTrigger(r rule) []string {
	fn := fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
BEGIN
  IF (SELECT COUNT(*) FROM %s WHERE %s = NEW.%s AND created_at > now() - interval '%d seconds') >= %d THEN
    RAISE EXCEPTION %s USING ERRCODE = '%s';
  END IF;
  RETURN NEW;
END;
$$ LANGUAGE plpgsql`, functionName(r), r.Table, r.Owner, r.Owner, windowSeconds(r), r.Limit.Max, quote(r.Message), pgRateLimitState)

	return []string{
		fn,
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, triggerName(r), r.Table),
		fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT ON %s FOR EACH ROW EXECUTE FUNCTION %s()`, triggerName(r), r.Table, functionName(r)),
	}
}

func mysqlTrigger(r rule) []string {
	return []string{
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %s`, triggerName(r)),
		fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT ON %s FOR EACH ROW
BEGIN
  IF (SELECT COUNT(*) FROM %s WHERE %s = NEW.%s AND created_at > UTC_TIMESTAMP(3) - INTERVAL %d SECOND) >= %d THEN
    SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = %s, MYSQL_ERRNO = %d;
  END IF;
END`, triggerName(r), r.Table, r.Table, r.Owner, r.Owner, windowSeconds(r), r.Limit.Max, quote(r.Message), mysqlSignalErrno),
	}
}

func sqliteTrigger(r rule) []string {
	return []string{
		fmt.Sprintf(`DROP TRIGGER IF EXISTS %s`, triggerName(r)),
		fmt.Sprintf(`CREATE TRIGGER %s BEFORE INSERT ON %s
WHEN (SELECT COUNT(*) FROM %s WHERE %s = NEW.%s AND created_at > datetime('now', '-%d seconds')) >= %d
BEGIN
  SELECT RAISE(ABORT, %s);
END`, triggerName(r), r.Table, r.Table, r.Owner, r.Owner, windowSeconds(r), r.Limit.Max, quote(r.Message)),
	}
}
